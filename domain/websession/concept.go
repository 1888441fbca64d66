// Package websession tracks which user a logical session belongs to.
// Cookie transport and expiry policy belong to the embedding service;
// this concept only owns the session records.
package websession

import (
	"context"

	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Session binds an opaque session id to a user id.
type Session struct {
	store.Base
	UserID string `json:"userId"`
}

// Concept exposes the session actions.
type Concept struct {
	sessions store.Store[*Session]
	logger   *zap.Logger
}

// NewConcept wires the concept to its store.
func NewConcept(sessions store.Store[*Session], logger *zap.Logger) *Concept {
	return &Concept{sessions: sessions, logger: logger}
}

// Start opens a session for the user and returns its record.
func (c *Concept) Start(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, pkgerrors.NewBadValuesError("user id must be non-empty")
	}

	s := &Session{UserID: userID}
	if _, err := c.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	c.logger.Info("session started", zap.String("sessionId", s.ID), zap.String("userId", userID))
	return s, nil
}

// GetUser resolves the session to its user. An unknown session means the
// caller is not logged in.
func (c *Concept) GetUser(ctx context.Context, sessionID string) (string, error) {
	s, err := c.sessions.FindOne(ctx, store.ByID(sessionID))
	if pkgerrors.IsNotFound(err) {
		return "", pkgerrors.NewUnauthorizedError("must be logged in")
	}
	if err != nil {
		return "", err
	}
	return s.UserID, nil
}

// End closes a session. Ending an already-ended session is a no-op.
func (c *Concept) End(ctx context.Context, sessionID string) error {
	err := c.sessions.DeleteOne(ctx, store.ByID(sessionID))
	if pkgerrors.IsNotFound(err) {
		return nil
	}
	return err
}

// EndAllFor closes every session belonging to the user. Account deletion
// uses this so no dangling session can act for a removed user.
func (c *Concept) EndAllFor(ctx context.Context, userID string) error {
	sessions, err := c.sessions.FindMany(ctx, store.Where("userId", userID))
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if err := c.sessions.DeleteOne(ctx, store.ByID(s.ID)); err != nil && !pkgerrors.IsNotFound(err) {
			return err
		}
	}
	return nil
}
