package orchestrator

import (
	"context"

	"mosaic-backend/domain/post"
)

// PostResult pairs an acknowledgement with the affected post.
type PostResult struct {
	Message string     `json:"message"`
	Post    *post.Post `json:"post"`
}

// CreatePost publishes a post as the logged-in user.
func (o *Orchestrator) CreatePost(ctx context.Context, sessionID, content string, options *post.Options) (*PostResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := o.posts.Create(ctx, userID, content, options)
	if err != nil {
		return nil, err
	}
	return &PostResult{Message: "Post successfully created!", Post: p}, nil
}

// GetPosts lists posts, optionally filtered to one author's username.
func (o *Orchestrator) GetPosts(ctx context.Context, authorUsername string) ([]*post.Post, error) {
	if authorUsername == "" {
		return o.posts.List(ctx)
	}
	author, err := o.users.GetByUsername(ctx, authorUsername)
	if err != nil {
		return nil, err
	}
	return o.posts.ByAuthor(ctx, author.ID)
}

// UpdatePost edits a post the logged-in user wrote.
func (o *Orchestrator) UpdatePost(ctx context.Context, sessionID, postID, content string, options *post.Options) (*PostResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := o.posts.IsAuthor(ctx, userID, postID); err != nil {
		return nil, err
	}
	p, err := o.posts.Update(ctx, postID, content, options)
	if err != nil {
		return nil, err
	}
	return &PostResult{Message: "Post updated successfully!", Post: p}, nil
}

// DeletePost removes a post the logged-in user wrote.
func (o *Orchestrator) DeletePost(ctx context.Context, sessionID, postID string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := o.posts.IsAuthor(ctx, userID, postID); err != nil {
		return nil, err
	}
	if err := o.posts.Delete(ctx, postID); err != nil {
		return nil, err
	}
	return &Response{Message: "Post deleted!"}, nil
}
