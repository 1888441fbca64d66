// Package post owns public posts.
package post

import (
	"context"

	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Options carries optional presentation settings for a post.
type Options struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Post is one public post.
type Post struct {
	store.Base
	Author  string   `json:"author"`
	Content string   `json:"content"`
	Options *Options `json:"options,omitempty"`
}

// Concept exposes the post actions.
type Concept struct {
	posts  store.Store[*Post]
	logger *zap.Logger
}

// NewConcept wires the concept to its store.
func NewConcept(posts store.Store[*Post], logger *zap.Logger) *Concept {
	return &Concept{posts: posts, logger: logger}
}

// Create publishes a post.
func (c *Concept) Create(ctx context.Context, author, content string, options *Options) (*Post, error) {
	if author == "" {
		return nil, pkgerrors.NewBadValuesError("author must be specified")
	}
	if content == "" {
		return nil, pkgerrors.NewBadValuesError("post content must be non-empty")
	}

	p := &Post{Author: author, Content: content, Options: options}
	if _, err := c.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one post.
func (c *Concept) Get(ctx context.Context, id string) (*Post, error) {
	p, err := c.posts.FindOne(ctx, store.ByID(id))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("post")
	}
	return p, err
}

// List returns every post, newest first.
func (c *Concept) List(ctx context.Context) ([]*Post, error) {
	return c.posts.FindMany(ctx, store.Criteria{
		Sort: []store.SortOption{{Field: "createdAt", Order: store.SortDescending}},
	})
}

// ByAuthor returns the author's posts, newest first.
func (c *Concept) ByAuthor(ctx context.Context, author string) ([]*Post, error) {
	return c.posts.FindMany(ctx,
		store.Where("author", author).OrderBy("createdAt", store.SortDescending),
	)
}

// IsAuthor verifies the user wrote the post.
func (c *Concept) IsAuthor(ctx context.Context, userID, postID string) error {
	p, err := c.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.Author != userID {
		return pkgerrors.NewUnauthorizedError("user is not the author of this post")
	}
	return nil
}

// Update replaces the post's content and options.
func (c *Concept) Update(ctx context.Context, id, content string, options *Options) (*Post, error) {
	if content == "" {
		return nil, pkgerrors.NewBadValuesError("post content must be non-empty")
	}

	patch := store.Patch{"content": content}
	if options != nil {
		patch["options"] = options
	}

	p, err := c.posts.UpdateOne(ctx, store.ByID(id), patch)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("post")
	}
	return p, err
}

// Delete removes a post.
func (c *Concept) Delete(ctx context.Context, id string) error {
	err := c.posts.DeleteOne(ctx, store.ByID(id))
	if pkgerrors.IsNotFound(err) {
		return pkgerrors.NewNotFoundError("post")
	}
	return err
}
