// Package trash owns the per-user trash can. Items land here when removed
// from a gallery and leave either by restore or permanent deletion.
package trash

import (
	"context"

	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Item is one trashed item. Type and Payload carry over from the record
// it was transferred from so a restore can reconstruct it.
type Item struct {
	store.Base
	Owner   string `json:"owner"`
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// Concept exposes the trash actions.
type Concept struct {
	items  store.Store[*Item]
	logger *zap.Logger
}

// NewConcept wires the concept to its store.
func NewConcept(items store.Store[*Item], logger *zap.Logger) *Concept {
	return &Concept{items: items, logger: logger}
}

// Add puts an item into the owner's trash.
func (c *Concept) Add(ctx context.Context, owner, itemType, payload string) (*Item, error) {
	if owner == "" {
		return nil, pkgerrors.NewBadValuesError("owner must be specified")
	}

	item := &Item{Owner: owner, Type: itemType, Payload: payload}
	if _, err := c.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns one of the owner's trashed items.
func (c *Concept) Get(ctx context.Context, owner, itemID string) (*Item, error) {
	item, err := c.items.FindOne(ctx, store.ByID(itemID).And("owner", owner))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("trash item")
	}
	return item, err
}

// List returns the owner's trashed items, oldest first.
func (c *Concept) List(ctx context.Context, owner string) ([]*Item, error) {
	return c.items.FindMany(ctx,
		store.Where("owner", owner).OrderBy("createdAt", store.SortAscending),
	)
}

// Remove takes an item out of the trash and returns it, for restoring
// into its originating concept.
func (c *Concept) Remove(ctx context.Context, owner, itemID string) (*Item, error) {
	item, err := c.Get(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := c.items.DeleteOne(ctx, store.ByID(itemID).And("owner", owner)); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNotFoundError("trash item")
		}
		return nil, err
	}
	return item, nil
}

// DeleteForever permanently removes an item from the trash.
func (c *Concept) DeleteForever(ctx context.Context, owner, itemID string) error {
	err := c.items.DeleteOne(ctx, store.ByID(itemID).And("owner", owner))
	if pkgerrors.IsNotFound(err) {
		return pkgerrors.NewNotFoundError("trash item")
	}
	if err == nil {
		c.logger.Info("trash item permanently deleted",
			zap.String("owner", owner),
			zap.String("itemId", itemID),
		)
	}
	return err
}
