package friend

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Concept exposes the friendship actions. It owns the requests and
// friendships collections; user ids are opaque references.
type Concept struct {
	requests    store.Store[*Request]
	friendships store.Store[*Friendship]
	logger      *zap.Logger
}

// NewConcept wires the concept to its stores.
func NewConcept(requests store.Store[*Request], friendships store.Store[*Friendship], logger *zap.Logger) *Concept {
	return &Concept{requests: requests, friendships: friendships, logger: logger}
}

// SendRequest creates a pending request from one user to another. It
// fails when the users are already friends or a pending request exists in
// either direction.
func (c *Concept) SendRequest(ctx context.Context, from, to string) (*Request, error) {
	if from == "" || to == "" {
		return nil, pkgerrors.NewBadValuesError("both users must be specified")
	}
	if from == to {
		return nil, pkgerrors.NewBadValuesError("cannot send a friend request to yourself")
	}

	friends, err := c.areFriends(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, pkgerrors.NewStateError("users are already friends")
	}

	for _, pair := range [][2]string{{from, to}, {to, from}} {
		_, err := c.pendingRequest(ctx, pair[0], pair[1])
		if err == nil {
			return nil, pkgerrors.NewStateError("friend request already exists between these users")
		}
		if !pkgerrors.IsNotFound(err) {
			return nil, err
		}
	}

	req := &Request{From: from, To: to, Status: StatusPending}
	if _, err := c.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	c.logger.Info("friend request sent", zap.String("from", from), zap.String("to", to))
	return req, nil
}

// AcceptRequest turns a pending request into a symmetric friendship.
func (c *Concept) AcceptRequest(ctx context.Context, from, to string) (*Friendship, error) {
	req, err := c.pendingRequest(ctx, from, to)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("pending friend request")
	}
	if err != nil {
		return nil, err
	}

	// The status condition makes a double-accept lose the race cleanly.
	_, err = c.requests.UpdateOne(ctx,
		store.ByID(req.ID).And("status", string(StatusPending)),
		store.Patch{"status": string(StatusAccepted)},
	)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewConflictError("friend request was already resolved")
	}
	if err != nil {
		return nil, err
	}

	f := &Friendship{User1: from, User2: to}
	if _, err := c.friendships.Create(ctx, f); err != nil {
		return nil, err
	}

	c.logger.Info("friend request accepted", zap.String("from", from), zap.String("to", to))
	return f, nil
}

// RejectRequest marks a pending request rejected.
func (c *Concept) RejectRequest(ctx context.Context, from, to string) (*Request, error) {
	req, err := c.pendingRequest(ctx, from, to)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("pending friend request")
	}
	if err != nil {
		return nil, err
	}

	updated, err := c.requests.UpdateOne(ctx,
		store.ByID(req.ID).And("status", string(StatusPending)),
		store.Patch{"status": string(StatusRejected)},
	)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewConflictError("friend request was already resolved")
	}
	return updated, err
}

// RemoveRequest withdraws a pending request.
func (c *Concept) RemoveRequest(ctx context.Context, from, to string) error {
	req, err := c.pendingRequest(ctx, from, to)
	if pkgerrors.IsNotFound(err) {
		return pkgerrors.NewNotFoundError("pending friend request")
	}
	if err != nil {
		return err
	}
	return c.requests.DeleteOne(ctx, store.ByID(req.ID))
}

// RemoveFriend deletes the friendship edge regardless of which direction
// it was stored in. Removing an absent edge is a no-op.
func (c *Concept) RemoveFriend(ctx context.Context, u1, u2 string) error {
	for _, pair := range [][2]string{{u1, u2}, {u2, u1}} {
		err := c.friendships.DeleteOne(ctx, store.Where("user1", pair[0]).And("user2", pair[1]))
		if err == nil {
			c.logger.Info("friendship removed", zap.String("user1", u1), zap.String("user2", u2))
			return nil
		}
		if !pkgerrors.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// GetFriends returns the ids of every user with an accepted relation to u,
// whichever direction the edge was stored in.
func (c *Concept) GetFriends(ctx context.Context, u string) ([]string, error) {
	asUser1, err := c.friendships.FindMany(ctx, store.Where("user1", u))
	if err != nil {
		return nil, err
	}
	asUser2, err := c.friendships.FindMany(ctx, store.Where("user2", u))
	if err != nil {
		return nil, err
	}

	friends := lo.Map(asUser1, func(f *Friendship, _ int) string { return f.User2 })
	friends = append(friends, lo.Map(asUser2, func(f *Friendship, _ int) string { return f.User1 })...)
	return lo.Uniq(friends), nil
}

// GetRequests returns every request involving u, sent or received.
func (c *Concept) GetRequests(ctx context.Context, u string) ([]*Request, error) {
	sent, err := c.requests.FindMany(ctx, store.Where("from", u))
	if err != nil {
		return nil, err
	}
	received, err := c.requests.FindMany(ctx, store.Where("to", u))
	if err != nil {
		return nil, err
	}
	return append(sent, received...), nil
}

func (c *Concept) pendingRequest(ctx context.Context, from, to string) (*Request, error) {
	return c.requests.FindOne(ctx,
		store.Where("from", from).And("to", to).And("status", string(StatusPending)),
	)
}

func (c *Concept) areFriends(ctx context.Context, u1, u2 string) (bool, error) {
	for _, pair := range [][2]string{{u1, u2}, {u2, u1}} {
		_, err := c.friendships.FindOne(ctx, store.Where("user1", pair[0]).And("user2", pair[1]))
		if err == nil {
			return true, nil
		}
		if !pkgerrors.IsNotFound(err) {
			return false, err
		}
	}
	return false, nil
}
