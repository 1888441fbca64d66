package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

type note struct {
	store.Base
	Owner string `json:"owner"`
	Text  string `json:"text"`
	Seq   int    `json:"seq"`
}

func newNoteStore(t *testing.T) *Store[*note] {
	t.Helper()
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewStore[*note]("notes", zap.NewNop()).WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
}

func TestStore_Create_AssignsIDAndTimestamps(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newNoteStore(t)
	doc := &note{Owner: "u1", Text: "hello"}

	// Act
	id, err := s.Create(ctx, doc)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.Equal(t, doc.CreatedAt, doc.UpdatedAt)
}

func TestStore_Create_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := s.Create(ctx, &note{Owner: "u1"})
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestStore_FindOne_ByID(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)
	id, err := s.Create(ctx, &note{Owner: "u1", Text: "hello"})
	require.NoError(t, err)

	found, err := s.FindOne(ctx, store.ByID(id))

	require.NoError(t, err)
	assert.Equal(t, "hello", found.Text)
	assert.Equal(t, id, found.ID)
}

func TestStore_FindOne_NoMatch(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)

	_, err := s.FindOne(ctx, store.ByID("missing"))

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_FindMany_FiltersAndSorts(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newNoteStore(t)
	for i, text := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, &note{Owner: "u1", Text: text, Seq: i})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, &note{Owner: "u2", Text: "other"})
	require.NoError(t, err)

	// Act
	descending, err := s.FindMany(ctx, store.Where("owner", "u1").OrderBy("seq", store.SortDescending))

	// Assert
	require.NoError(t, err)
	require.Len(t, descending, 3)
	assert.Equal(t, "c", descending[0].Text)
	assert.Equal(t, "a", descending[2].Text)
}

func TestStore_FindMany_DefaultsToCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)
	for _, text := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, &note{Owner: "u1", Text: text})
		require.NoError(t, err)
	}

	all, err := s.FindMany(ctx, store.Criteria{})

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Text)
	assert.Equal(t, "third", all[2].Text)
}

func TestStore_FindMany_Limit(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, &note{Owner: "u1", Seq: i})
		require.NoError(t, err)
	}

	limited, err := s.FindMany(ctx, store.Criteria{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_UpdateOne_MergesPatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newNoteStore(t)
	id, err := s.Create(ctx, &note{Owner: "u1", Text: "before", Seq: 1})
	require.NoError(t, err)

	// Act
	updated, err := s.UpdateOne(ctx, store.ByID(id), store.Patch{"text": "after"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	assert.Equal(t, "u1", updated.Owner, "unpatched fields survive")
	assert.Equal(t, 1, updated.Seq)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestStore_UpdateOne_ConditionMissIsNotFound(t *testing.T) {
	// A multi-field filter is the compare-and-set primitive: when the
	// record no longer satisfies the extra conditions the update must
	// report NOT_FOUND and leave the record untouched.
	ctx := context.Background()
	s := newNoteStore(t)
	id, err := s.Create(ctx, &note{Owner: "u1", Text: "original", Seq: 1})
	require.NoError(t, err)

	_, err = s.UpdateOne(ctx, store.ByID(id).And("seq", 99), store.Patch{"text": "clobbered"})

	assert.True(t, pkgerrors.IsNotFound(err))
	current, err := s.FindOne(ctx, store.ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "original", current.Text)
}

func TestStore_DeleteOne_RemovesRecord(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)
	id, err := s.Create(ctx, &note{Owner: "u1"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteOne(ctx, store.ByID(id)))

	_, err = s.FindOne(ctx, store.ByID(id))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_DeleteOne_NoMatch(t *testing.T) {
	ctx := context.Background()
	s := newNoteStore(t)

	err := s.DeleteOne(ctx, store.ByID("missing"))

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_ConcurrentReadsAndWrites(t *testing.T) {
	// Readers decode the field maps writers are mutating; run both sides
	// hard so the race detector has something to catch if decoding ever
	// escapes the lock again.
	ctx := context.Background()
	s := NewStore[*note]("notes", zap.NewNop())
	id, err := s.Create(ctx, &note{Owner: "u1", Text: "v0"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(2)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, err := s.UpdateOne(ctx, store.ByID(id), store.Patch{"text": fmt.Sprintf("v%d-%d", worker, i)})
				assert.NoError(t, err)
			}
		}(worker)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				found, err := s.FindOne(ctx, store.ByID(id))
				if assert.NoError(t, err) {
					assert.Equal(t, id, found.ID)
				}
			}
		}()
	}
	wg.Wait()

	final, err := s.FindOne(ctx, store.ByID(id))
	require.NoError(t, err)
	assert.NotEmpty(t, final.Text)
}
