package chat

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
	return NewConcept(
		memory.NewStore[*Session]("chats", zap.NewNop()),
		memory.NewStore[*Message]("chat_messages", zap.NewNop()),
		zap.NewNop(),
	)
}

func TestConcept_FindOrCreate_Idempotent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)

	// Act
	first, err := c.FindOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	again, err := c.FindOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	reversed, err := c.FindOrCreate(ctx, "u2", "u1")
	require.NoError(t, err)

	// Assert: one chat regardless of call count or argument order
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.ID, reversed.ID)
}

func TestConcept_FindOrCreate_SelfChat(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	_, err := c.FindOrCreate(ctx, "u1", "u1")

	assert.True(t, pkgerrors.IsBadValues(err))
}

func TestConcept_SendMessage_ParticipantOnly(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.FindOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)

	// Act / Assert
	_, err = c.SendMessage(ctx, s.ID, "u3", "hi")
	assert.True(t, pkgerrors.IsUnauthorized(err))

	m, err := c.SendMessage(ctx, s.ID, "u1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "u1", m.Author)
}

func TestConcept_SendMessage_UnknownChat(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	_, err := c.SendMessage(ctx, "missing", "u1", "hi")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConcept_Messages_OldestFirst(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.FindOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	for _, text := range []string{"one", "two", "three"} {
		_, err := c.SendMessage(ctx, s.ID, "u1", text)
		require.NoError(t, err)
	}

	messages, err := c.Messages(ctx, s.ID)

	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Text)
	assert.Equal(t, "three", messages[2].Text)
}

func TestConcept_ChatsOf_BothSides(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.FindOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = c.FindOrCreate(ctx, "u3", "u1")
	require.NoError(t, err)
	_, err = c.FindOrCreate(ctx, "u2", "u3")
	require.NoError(t, err)

	chats, err := c.ChatsOf(ctx, "u1")

	require.NoError(t, err)
	assert.Len(t, chats, 2)
}

func TestConcept_Delete_RetainsMessages(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	s, err := c.FindOrCreate(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = c.SendMessage(ctx, s.ID, "u1", "hi")
	require.NoError(t, err)

	// Act
	require.NoError(t, c.Delete(ctx, s.ID))

	// Assert
	_, err = c.Get(ctx, s.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	messages, err := c.Messages(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestSession_OtherParticipant(t *testing.T) {
	s := &Session{UserA: "u1", UserB: "u2"}

	assert.Equal(t, "u2", s.OtherParticipant("u1"))
	assert.Equal(t, "u1", s.OtherParticipant("u2"))
	assert.True(t, s.HasParticipant("u1"))
	assert.False(t, s.HasParticipant("u3"))
}
