package user

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	"mosaic-backend/pkg/auth"
	pkgerrors "mosaic-backend/pkg/errors"
)

// DeletedUsername is substituted when resolving ids of accounts that no
// longer exist.
const DeletedUsername = "DELETED_USER"

// Concept exposes the account actions. It owns the users collection and
// nothing else.
type Concept struct {
	users  store.Store[*User]
	hasher auth.PasswordHasher
	logger *zap.Logger
}

// NewConcept wires the concept to its store and password hasher.
func NewConcept(users store.Store[*User], hasher auth.PasswordHasher, logger *zap.Logger) *Concept {
	return &Concept{users: users, hasher: hasher, logger: logger}
}

// Create registers a new account. Usernames are unique; a taken name is
// an illegal transition, not a validation failure.
func (c *Concept) Create(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, pkgerrors.NewBadValuesError("username and password must be non-empty")
	}

	_, err := c.users.FindOne(ctx, store.Where("username", username))
	if err == nil {
		return nil, pkgerrors.NewStateError("user with username " + username + " already exists")
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := c.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to hash password").WithCause(err)
	}

	u := &User{Username: username, PasswordHash: hash}
	if _, err := c.users.Create(ctx, u); err != nil {
		return nil, err
	}

	c.logger.Info("user created", zap.String("userId", u.ID))
	return u, nil
}

// Authenticate verifies credentials. Both an unknown username and a wrong
// password surface the same unauthorized message.
func (c *Concept) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := c.users.FindOne(ctx, store.Where("username", username))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewUnauthorizedError("username or password is incorrect")
	}
	if err != nil {
		return nil, err
	}

	ok, err := c.hasher.Compare(password, u.PasswordHash)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to verify password").WithCause(err)
	}
	if !ok {
		return nil, pkgerrors.NewUnauthorizedError("username or password is incorrect")
	}
	return u, nil
}

// GetByID returns the account for an opaque id.
func (c *Concept) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := c.users.FindOne(ctx, store.ByID(id))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return u, err
}

// GetByUsername returns the account for a username.
func (c *Concept) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := c.users.FindOne(ctx, store.Where("username", username))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("user " + username)
	}
	return u, err
}

// List returns every account.
func (c *Concept) List(ctx context.Context) ([]*User, error) {
	return c.users.FindMany(ctx, store.Criteria{})
}

// Update renames an account, keeping usernames unique.
func (c *Concept) Update(ctx context.Context, id, username string) (*User, error) {
	if username == "" {
		return nil, pkgerrors.NewBadValuesError("username must be non-empty")
	}

	existing, err := c.users.FindOne(ctx, store.Where("username", username))
	if err == nil && existing.ID != id {
		return nil, pkgerrors.NewStateError("user with username " + username + " already exists")
	}
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	u, err := c.users.UpdateOne(ctx, store.ByID(id), store.Patch{"username": username})
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	return u, err
}

// Delete removes an account.
func (c *Concept) Delete(ctx context.Context, id string) error {
	err := c.users.DeleteOne(ctx, store.ByID(id))
	if pkgerrors.IsNotFound(err) {
		return pkgerrors.NewNotFoundError("user")
	}
	return err
}

// UsernamesOf resolves ids to usernames, substituting DeletedUsername for
// ids that no longer resolve. Order follows the input.
func (c *Concept) UsernamesOf(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	users, err := c.users.FindMany(ctx, store.Criteria{
		Filters: []store.Filter{{Field: "id", Op: store.OpIn, Value: ids}},
	})
	if err != nil {
		return nil, err
	}

	byID := lo.SliceToMap(users, func(u *User) (string, string) {
		return u.ID, u.Username
	})
	return lo.Map(ids, func(id string, _ int) string {
		if name, ok := byID[id]; ok {
			return name
		}
		return DeletedUsername
	}), nil
}
