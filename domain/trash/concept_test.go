package trash

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
	return NewConcept(memory.NewStore[*Item]("trash_items", zap.NewNop()), zap.NewNop())
}

func TestConcept_Add_And_List(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)
	_, err = c.Add(ctx, "u2", "photos", "img-2")
	require.NoError(t, err)

	items, err := c.List(ctx, "u1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "img-1", items[0].Payload)
}

func TestConcept_Remove_ReturnsItemForRestore(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	added, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)

	removed, err := c.Remove(ctx, "u1", added.ID)

	require.NoError(t, err)
	assert.Equal(t, "photos", removed.Type)

	_, err = c.Get(ctx, "u1", added.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConcept_DeleteForever(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	added, err := c.Add(ctx, "u1", "photos", "img-1")
	require.NoError(t, err)

	require.NoError(t, c.DeleteForever(ctx, "u1", added.ID))

	err = c.DeleteForever(ctx, "u1", added.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}
