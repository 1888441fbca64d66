package chat

import (
	"context"

	"go.uber.org/zap"

	"mosaic-backend/domain/identity"
	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Concept exposes the chat actions. It owns the chat sessions and
// messages collections.
type Concept struct {
	sessions store.Store[*Session]
	messages store.Store[*Message]
	logger   *zap.Logger
}

// NewConcept wires the concept to its stores.
func NewConcept(sessions store.Store[*Session], messages store.Store[*Message], logger *zap.Logger) *Concept {
	return &Concept{sessions: sessions, messages: messages, logger: logger}
}

// FindOrCreate returns the chat for the unordered pair, creating it on
// first use. Repeated calls with either argument order return the same
// chat, which keeps workflows that create chats idempotent.
func (c *Concept) FindOrCreate(ctx context.Context, a, b string) (*Session, error) {
	if a == "" || b == "" {
		return nil, pkgerrors.NewBadValuesError("both participants must be specified")
	}
	if a == b {
		return nil, pkgerrors.NewBadValuesError("cannot open a chat with yourself")
	}

	pair := identity.UnorderedPairKey(a, b)
	existing, err := c.sessions.FindOne(ctx, store.Where("pairKey", pair))
	if err == nil {
		return existing, nil
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	s := &Session{PairKey: pair, UserA: a, UserB: b}
	if _, err := c.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	c.logger.Info("chat created", zap.String("chatId", s.ID), zap.String("pair", pair))
	return s, nil
}

// Get returns the chat with the given id.
func (c *Concept) Get(ctx context.Context, chatID string) (*Session, error) {
	s, err := c.sessions.FindOne(ctx, store.ByID(chatID))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("chat")
	}
	return s, err
}

// ByPair returns the chat for an unordered pair of users.
func (c *Concept) ByPair(ctx context.Context, a, b string) (*Session, error) {
	s, err := c.sessions.FindOne(ctx, store.Where("pairKey", identity.UnorderedPairKey(a, b)))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("chat")
	}
	return s, err
}

// SendMessage appends a message to the chat. The author must be one of
// the chat's two participants.
func (c *Concept) SendMessage(ctx context.Context, chatID, author, text string) (*Message, error) {
	if text == "" {
		return nil, pkgerrors.NewBadValuesError("message text must be non-empty")
	}

	s, err := c.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !s.HasParticipant(author) {
		return nil, pkgerrors.NewUnauthorizedError("user is not a member of this chat")
	}

	m := &Message{ChatID: chatID, Author: author, Text: text}
	if _, err := c.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Messages returns the chat's messages oldest first.
func (c *Concept) Messages(ctx context.Context, chatID string) ([]*Message, error) {
	return c.messages.FindMany(ctx,
		store.Where("chatId", chatID).OrderBy("createdAt", store.SortAscending),
	)
}

// ChatsOf returns every chat the user participates in.
func (c *Concept) ChatsOf(ctx context.Context, userID string) ([]*Session, error) {
	asA, err := c.sessions.FindMany(ctx, store.Where("userA", userID))
	if err != nil {
		return nil, err
	}
	asB, err := c.sessions.FindMany(ctx, store.Where("userB", userID))
	if err != nil {
		return nil, err
	}
	return append(asA, asB...), nil
}

// Delete removes a chat session. Messages are retained as history.
func (c *Concept) Delete(ctx context.Context, chatID string) error {
	err := c.sessions.DeleteOne(ctx, store.ByID(chatID))
	if pkgerrors.IsNotFound(err) {
		return pkgerrors.NewNotFoundError("chat")
	}
	return err
}
