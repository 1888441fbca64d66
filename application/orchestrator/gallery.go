package orchestrator

import (
	"context"

	"mosaic-backend/application/workflows"
	"mosaic-backend/domain/gallery"
	"mosaic-backend/domain/trash"
	pkgerrors "mosaic-backend/pkg/errors"
)

// GalleryItemResult pairs an acknowledgement with the affected item.
type GalleryItemResult struct {
	Message string        `json:"message"`
	Item    *gallery.Item `json:"item"`
}

// AddGalleryItem saves an item into the logged-in user's gallery.
func (o *Orchestrator) AddGalleryItem(ctx context.Context, sessionID, itemType, payload string) (*GalleryItemResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	item, err := o.galleries.Add(ctx, userID, itemType, payload)
	if err != nil {
		return nil, err
	}
	return &GalleryItemResult{Message: "Item added to gallery!", Item: item}, nil
}

// GetGalleryItem fetches one of the logged-in user's gallery items.
func (o *Orchestrator) GetGalleryItem(ctx context.Context, sessionID, itemID string) (*gallery.Item, error) {
	if itemID == "" {
		return nil, pkgerrors.NewBadValuesError("item id cannot be empty")
	}
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.galleries.Get(ctx, userID, itemID)
}

// ListGalleryItems returns the items in one of the user's galleries.
func (o *Orchestrator) ListGalleryItems(ctx context.Context, sessionID, galleryName string) ([]*gallery.Item, error) {
	if galleryName == "" {
		return nil, pkgerrors.NewBadValuesError("gallery name cannot be empty")
	}
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.galleries.ItemsByType(ctx, userID, galleryName)
}

// ListGalleries returns the user's gallery names.
func (o *Orchestrator) ListGalleries(ctx context.Context, sessionID string) ([]string, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.galleries.Galleries(ctx, userID)
}

// TrashItemResult pairs an acknowledgement with the affected trash item.
type TrashItemResult struct {
	Message string      `json:"message"`
	Item    *trash.Item `json:"item"`
}

// MoveToTrash transfers a gallery item into the trash. The transfer is
// two sequential store operations with no cross-entity lock: if the trash
// step fails the item has already left the gallery, a narrow documented
// window in which it exists in neither collection. Re-running the
// operation on the same item returns NotFound rather than duplicating.
func (o *Orchestrator) MoveToTrash(ctx context.Context, sessionID, itemID string) (*TrashItemResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		removed *gallery.Item
		trashed *trash.Item
	)
	err = o.runner.Execute(ctx, workflows.Workflow{
		Name: "move-to-trash",
		Steps: []workflows.Step{
			{Name: "remove-from-gallery", Run: func(ctx context.Context) error {
				var err error
				removed, err = o.galleries.Remove(ctx, userID, itemID)
				return err
			}},
			{Name: "add-to-trash", Run: func(ctx context.Context) error {
				var err error
				trashed, err = o.trashcan.Add(ctx, userID, removed.Type, removed.Payload)
				return err
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &TrashItemResult{Message: "Item moved to trash!", Item: trashed}, nil
}

// RestoreFromTrash transfers a trash item back into the gallery it came
// from, with the same documented non-atomic window as MoveToTrash.
func (o *Orchestrator) RestoreFromTrash(ctx context.Context, sessionID, itemID string) (*GalleryItemResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		removed  *trash.Item
		restored *gallery.Item
	)
	err = o.runner.Execute(ctx, workflows.Workflow{
		Name: "restore-from-trash",
		Steps: []workflows.Step{
			{Name: "remove-from-trash", Run: func(ctx context.Context) error {
				var err error
				removed, err = o.trashcan.Remove(ctx, userID, itemID)
				return err
			}},
			{Name: "add-to-gallery", Run: func(ctx context.Context) error {
				var err error
				restored, err = o.galleries.Add(ctx, userID, removed.Type, removed.Payload)
				return err
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &GalleryItemResult{Message: "Item restored!", Item: restored}, nil
}

// PermanentlyDelete removes a trash item for good.
func (o *Orchestrator) PermanentlyDelete(ctx context.Context, sessionID, itemID string) (*Response, error) {
	if itemID == "" {
		return nil, pkgerrors.NewBadValuesError("item id cannot be empty")
	}
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := o.trashcan.DeleteForever(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return &Response{Message: "Item deleted forever!"}, nil
}

// GetTrashItem fetches one of the logged-in user's trash items.
func (o *Orchestrator) GetTrashItem(ctx context.Context, sessionID, itemID string) (*trash.Item, error) {
	if itemID == "" {
		return nil, pkgerrors.NewBadValuesError("item id cannot be empty")
	}
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.trashcan.Get(ctx, userID, itemID)
}

// ListTrashItems returns the logged-in user's trash.
func (o *Orchestrator) ListTrashItems(ctx context.Context, sessionID string) ([]*trash.Item, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.trashcan.List(ctx, userID)
}
