package collab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/memory"
	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// interceptedSessions lets a test run code between the concept's read of
// a session and its conditional write, simulating a concurrent writer.
type interceptedSessions struct {
	store.Store[*Session]
	onRead func(*Session)
}

func (s *interceptedSessions) FindOne(ctx context.Context, criteria store.Criteria) (*Session, error) {
	found, err := s.Store.FindOne(ctx, criteria)
	if err == nil && s.onRead != nil {
		s.onRead(found)
	}
	return found, err
}

func newConcept(t *testing.T) *Concept {
	t.Helper()
	return NewConcept(
		memory.NewStore[*Session]("collab_sessions", zap.NewNop()),
		memory.NewStore[*Entry]("collab_entries", zap.NewNop()),
		zap.NewNop(),
	)
}

func TestConcept_Start_FirstTurnBelongsToInitiator(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")

	require.NoError(t, err)
	assert.Equal(t, StatusOn, s.Status)
	assert.Equal(t, "u1", s.Turn)
	assert.Equal(t, 0, s.Entries)
}

func TestConcept_Start_WithOpeningText(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	s, err := c.Start(ctx, "chat-1", "u1", "u2", "once upon a time")

	require.NoError(t, err)
	assert.Equal(t, "u2", s.Turn, "opening contribution passes the turn")
	assert.Equal(t, 1, s.Entries)

	entries, err := c.ContentOf(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].Author)
}

func TestConcept_Start_AlreadyActive(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)

	_, err = c.Start(ctx, "chat-1", "u2", "u1", "")

	assert.True(t, pkgerrors.IsState(err), "either argument order maps to the same pair")
}

func TestConcept_Collab_AlternatesTurns(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)

	// Act
	s, e1, err := c.Collab(ctx, s.ID, "u1", "the cat")
	require.NoError(t, err)
	s, e2, err := c.Collab(ctx, s.ID, "u2", "sat down")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "u1", s.Turn)
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 1, e1.Seq)
	assert.Equal(t, 2, e2.Seq)
}

func TestConcept_Collab_OutOfTurn(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)

	_, _, err = c.Collab(ctx, s.ID, "u2", "me first")

	assert.True(t, pkgerrors.IsConflict(err))

	// A rejected contribution leaves the session and content untouched.
	current, err := c.ByPair(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "u1", current.Turn)
	assert.Equal(t, 0, current.Entries)

	entries, err := c.ContentOf(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConcept_Collab_LosesRaceForTurn(t *testing.T) {
	// Arrange: the concept reads the session while it still holds the
	// turn, then another contribution lands before the conditional write.
	ctx := context.Background()
	sessions := memory.NewStore[*Session]("collab_sessions", zap.NewNop())
	entries := memory.NewStore[*Entry]("collab_entries", zap.NewNop())
	wrapped := &interceptedSessions{Store: sessions}
	c := NewConcept(wrapped, entries, zap.NewNop())

	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)

	raced := false
	wrapped.onRead = func(*Session) {
		if raced {
			return
		}
		raced = true
		_, err := sessions.UpdateOne(ctx, store.ByID(s.ID), store.Patch{"turn": "u2", "entries": 1})
		require.NoError(t, err)
	}

	// Act
	_, _, err = c.Collab(ctx, s.ID, "u1", "too late")

	// Assert: the loser gets a conflict and writes nothing.
	assert.True(t, pkgerrors.IsConflict(err))

	content, err := c.ContentOf(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, content)

	current, err := sessions.FindOne(ctx, store.ByID(s.ID))
	require.NoError(t, err)
	assert.Equal(t, "u2", current.Turn, "the winner's state stands")
	assert.Equal(t, 1, current.Entries)
}

func TestConcept_Collab_NonParticipant(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)

	_, _, err = c.Collab(ctx, s.ID, "u3", "hello")

	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestConcept_Collab_NoSession(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	_, _, err := c.Collab(ctx, "missing", "u1", "hello")

	assert.True(t, pkgerrors.IsState(err))
}

func TestConcept_Finish_MergesAndRemovesLiveSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)
	_, _, err = c.Collab(ctx, s.ID, "u1", "the cat")
	require.NoError(t, err)
	_, _, err = c.Collab(ctx, s.ID, "u2", "sat down")
	require.NoError(t, err)

	// Act
	merged, entries, err := c.Finish(ctx, s.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "the cat sat down", merged)
	assert.Len(t, entries, 2)

	_, err = c.ByPair(ctx, "u1", "u2")
	assert.True(t, pkgerrors.IsNotFound(err), "finished session is no longer live")
}

func TestConcept_Finish_RetainsEntriesAsHistory(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)
	_, _, err = c.Collab(ctx, s.ID, "u1", "draft one")
	require.NoError(t, err)
	_, _, err = c.Finish(ctx, s.ID)
	require.NoError(t, err)

	history, err := c.History(ctx, "chat-1")

	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "draft one", history[0].Text)
}

func TestConcept_Finish_DoubleFinish(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.Start(ctx, "chat-1", "u1", "u2", "")
	require.NoError(t, err)
	_, _, err = c.Finish(ctx, s.ID)
	require.NoError(t, err)

	_, _, err = c.Finish(ctx, s.ID)

	assert.True(t, pkgerrors.IsState(err))
}

func TestConcept_History_SpansSessions(t *testing.T) {
	// Arrange: two consecutive sessions on the same chat
	ctx := context.Background()
	c := newConcept(t)

	first, err := c.Start(ctx, "chat-1", "u1", "u2", "chapter one")
	require.NoError(t, err)
	_, _, err = c.Finish(ctx, first.ID)
	require.NoError(t, err)

	second, err := c.Start(ctx, "chat-1", "u1", "u2", "chapter two")
	require.NoError(t, err)

	// Act
	history, err := c.History(ctx, "chat-1")
	content, err2 := c.ContentOf(ctx, second.ID)

	// Assert
	require.NoError(t, err)
	require.NoError(t, err2)
	require.Len(t, history, 2)
	assert.Equal(t, "chapter one", history[0].Text)
	assert.Equal(t, "chapter two", history[1].Text)
	assert.Len(t, content, 1, "live content covers only the current session")
}
