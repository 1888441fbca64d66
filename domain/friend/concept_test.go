package friend

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
		memory.NewStore[*Request]("friend_requests", zap.NewNop()),
		memory.NewStore[*Friendship]("friendships", zap.NewNop()),
		zap.NewNop(),
	)
}

func TestConcept_SendRequest_Success(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	req, err := c.SendRequest(ctx, "u1", "u2")

	require.NoError(t, err)
	assert.Equal(t, "u1", req.From)
	assert.Equal(t, "u2", req.To)
	assert.Equal(t, StatusPending, req.Status)
}

func TestConcept_SendRequest_ToSelf(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	_, err := c.SendRequest(ctx, "u1", "u1")

	assert.True(t, pkgerrors.IsBadValues(err))
}

func TestConcept_SendRequest_DuplicateEitherDirection(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	// Act / Assert
	_, err = c.SendRequest(ctx, "u1", "u2")
	assert.True(t, pkgerrors.IsState(err))

	_, err = c.SendRequest(ctx, "u2", "u1")
	assert.True(t, pkgerrors.IsState(err), "reverse direction also counts as pending")
}

func TestConcept_SendRequest_AlreadyFriends(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = c.AcceptRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	_, err = c.SendRequest(ctx, "u2", "u1")

	assert.True(t, pkgerrors.IsState(err))
}

func TestConcept_AcceptRequest_CreatesSymmetricFriendship(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	// Act
	_, err = c.AcceptRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	// Assert: both users see each other
	friendsOf1, err := c.GetFriends(ctx, "u1")
	require.NoError(t, err)
	friendsOf2, err := c.GetFriends(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, friendsOf1)
	assert.Equal(t, []string{"u1"}, friendsOf2)
}

func TestConcept_AcceptRequest_NoPendingRequest(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	_, err := c.AcceptRequest(ctx, "u1", "u2")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestConcept_AcceptRequest_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = c.AcceptRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	_, err = c.AcceptRequest(ctx, "u1", "u2")

	assert.True(t, pkgerrors.IsNotFound(err), "resolved request is no longer pending")
}

func TestConcept_RejectRequest_MarksRejected(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	rejected, err := c.RejectRequest(ctx, "u1", "u2")

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	friends, err := c.GetFriends(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestConcept_RemoveRequest_Withdraws(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	require.NoError(t, c.RemoveRequest(ctx, "u1", "u2"))

	// Withdrawn means a fresh request can be sent again.
	_, err = c.SendRequest(ctx, "u1", "u2")
	assert.NoError(t, err)
}

func TestConcept_RemoveFriend_EitherDirection(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = c.AcceptRequest(ctx, "u1", "u2")
	require.NoError(t, err)

	// Act: remove from the side that did not store the edge
	require.NoError(t, c.RemoveFriend(ctx, "u2", "u1"))

	// Assert
	friends, err := c.GetFriends(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestConcept_RemoveFriend_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)

	assert.NoError(t, c.RemoveFriend(ctx, "u1", "u2"))
}

func TestConcept_GetRequests_SentAndReceived(t *testing.T) {
	ctx := context.Background()
	c := newConcept(t)
	_, err := c.SendRequest(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = c.SendRequest(ctx, "u3", "u1")
	require.NoError(t, err)

	requests, err := c.GetRequests(ctx, "u1")

	require.NoError(t, err)
	assert.Len(t, requests, 2)
}
