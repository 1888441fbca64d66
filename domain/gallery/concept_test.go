package gallery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/memory"
	pkgerrors "mosaic-backend/pkg/errors"
)

func newConcept(t *testing.T) *Concept {
	t.Helper()
	return NewConcept(memory.NewStore[*Item]("gallery_items", zap.NewNop()), zap.NewNop())
}

func TestConcept_Add_And_Get(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	added, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)

	got, err := c.Get(ctx, "u1", added.ID)
	require.NoError(t, err)
	assert.Equal(t, "img-1", got.Payload)
}

func TestConcept_Get_WrongOwner(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	added, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)

	_, err = c.Get(ctx, "u2", added.ID)

	assert.True(t, pkgerrors.IsNotFound(err), "items are scoped to their owner")
}

func TestConcept_Galleries_DistinctTypes(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	for _, itemType := range []string{"photos", "photos", "stories"} {
		_, err := c.Add(ctx, "u1", itemType, "x")
		require.NoError(t, err)
	}

	galleries, err := c.Galleries(ctx, "u1")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"photos", "stories"}, galleries)
}

func TestConcept_ItemsByType(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)
	_, err = c.Add(ctx, "u1", "stories", "story-1")
	require.NoError(t, err)

	photos, err := c.ItemsByType(ctx, "u1", "photos")

	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "img-1", photos[0].Payload)
}

func TestConcept_Remove_ReturnsItemForTransfer(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	added, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)

	// Act
	removed, err := c.Remove(ctx, "u1", added.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "photos", removed.Type)
	assert.Equal(t, "img-1", removed.Payload)

	_, err = c.Get(ctx, "u1", added.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}
