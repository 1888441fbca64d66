// Package gallery owns the per-user galleries of saved items, grouped by
// item type.
package gallery

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Item is one saved gallery item. Type doubles as the gallery name the
// item is grouped under.
type Item struct {
	store.Base
	Owner   string `json:"owner"`
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// Concept exposes the gallery actions.
type Concept struct {
	items  store.Store[*Item]
	logger *zap.Logger
}

// NewConcept wires the concept to its store.
func NewConcept(items store.Store[*Item], logger *zap.Logger) *Concept {
	return &Concept{items: items, logger: logger}
}

// Add saves an item into the owner's gallery of the given type.
func (c *Concept) Add(ctx context.Context, owner, itemType, payload string) (*Item, error) {
	if owner == "" || itemType == "" {
		return nil, pkgerrors.NewBadValuesError("owner and item type must be specified")
	}

	item := &Item{Owner: owner, Type: itemType, Payload: payload}
	if _, err := c.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns one of the owner's items.
func (c *Concept) Get(ctx context.Context, owner, itemID string) (*Item, error) {
	item, err := c.items.FindOne(ctx, store.ByID(itemID).And("owner", owner))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("gallery item")
	}
	return item, err
}

// ItemsByType returns the owner's items in one gallery, oldest first.
func (c *Concept) ItemsByType(ctx context.Context, owner, itemType string) ([]*Item, error) {
	return c.items.FindMany(ctx,
		store.Where("owner", owner).And("type", itemType).
			OrderBy("createdAt", store.SortAscending),
	)
}

// Galleries returns the distinct gallery names the owner has items in.
func (c *Concept) Galleries(ctx context.Context, owner string) ([]string, error) {
	items, err := c.items.FindMany(ctx, store.Where("owner", owner))
	if err != nil {
		return nil, err
	}
	return lo.Uniq(lo.Map(items, func(i *Item, _ int) string { return i.Type })), nil
}

// Remove deletes an item from the gallery and returns it so ownership can
// transfer to another concept (the trash) without duplication.
func (c *Concept) Remove(ctx context.Context, owner, itemID string) (*Item, error) {
	item, err := c.Get(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := c.items.DeleteOne(ctx, store.ByID(itemID).And("owner", owner)); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNotFoundError("gallery item")
		}
		return nil, err
	}
	return item, nil
}
