package collab

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"mosaic-backend/domain/identity"
	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Concept exposes the collaborative session actions. It owns the live
// session records and the append-only content entries.
type Concept struct {
	sessions store.Store[*Session]
	entries  store.Store[*Entry]
	logger   *zap.Logger
}

// NewConcept wires the concept to its stores.
func NewConcept(sessions store.Store[*Session], entries store.Store[*Entry], logger *zap.Logger) *Concept {
	return &Concept{sessions: sessions, entries: entries, logger: logger}
}

// Start opens a session for the pair on the given chat, with p1 holding
// the first turn. When firstText is non-empty the opening contribution is
// appended through the same turn-checked path as any other, leaving the
// turn with p2.
func (c *Concept) Start(ctx context.Context, chatID, p1, p2, firstText string) (*Session, error) {
	if chatID == "" || p1 == "" || p2 == "" {
		return nil, pkgerrors.NewBadValuesError("chat and both participants must be specified")
	}
	if p1 == p2 {
		return nil, pkgerrors.NewBadValuesError("cannot collaborate with yourself")
	}

	pair := identity.UnorderedPairKey(p1, p2)
	_, err := c.sessions.FindOne(ctx, store.Where("pairKey", pair))
	if err == nil {
		return nil, pkgerrors.NewStateError("a collaborative session is already active for these users")
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	s := &Session{
		PairKey: pair,
		ChatID:  chatID,
		UserA:   p1,
		UserB:   p2,
		Status:  StatusOn,
		Turn:    p1,
	}
	if _, err := c.sessions.Create(ctx, s); err != nil {
		return nil, err
	}

	c.logger.Info("collaborative session started",
		zap.String("sessionId", s.ID),
		zap.String("chatId", chatID),
		zap.String("turn", p1),
	)

	if firstText == "" {
		return s, nil
	}
	updated, _, err := c.Collab(ctx, s.ID, p1, firstText)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Collab appends a contribution for the participant currently holding the
// turn and passes the turn to the other participant. The turn is flipped
// with a compare-and-set before the entry is written: a caller that lost
// the turn between read and write gets ConflictError and the content
// stream stays untouched.
func (c *Concept) Collab(ctx context.Context, sessionID, author, text string) (*Session, *Entry, error) {
	if text == "" {
		return nil, nil, pkgerrors.NewBadValuesError("contribution text must be non-empty")
	}

	s, err := c.sessions.FindOne(ctx, store.ByID(sessionID))
	if pkgerrors.IsNotFound(err) {
		return nil, nil, pkgerrors.NewStateError("no active collaborative session")
	}
	if err != nil {
		return nil, nil, err
	}

	if !s.HasParticipant(author) {
		return nil, nil, pkgerrors.NewUnauthorizedError("user is not a participant of this session")
	}
	if s.Turn != author {
		return nil, nil, pkgerrors.NewConflictError("it is not this user's turn")
	}

	next := s.OtherParticipant(author)
	seq := s.Entries + 1

	updated, err := c.sessions.UpdateOne(ctx,
		store.ByID(s.ID).
			And("status", string(StatusOn)).
			And("turn", author).
			And("entries", s.Entries),
		store.Patch{"turn": next, "entries": seq},
	)
	if pkgerrors.IsNotFound(err) {
		return nil, nil, pkgerrors.NewConflictError("lost the turn to a concurrent contribution")
	}
	if err != nil {
		return nil, nil, err
	}

	e := &Entry{
		ChatID:    s.ChatID,
		SessionID: s.ID,
		Author:    author,
		Text:      text,
		Seq:       seq,
	}
	if _, err := c.entries.Create(ctx, e); err != nil {
		return nil, nil, err
	}

	c.logger.Debug("collaborative entry appended",
		zap.String("sessionId", s.ID),
		zap.Int("seq", seq),
		zap.String("nextTurn", next),
	)
	return updated, e, nil
}

// Finish closes the session, deletes the live record and returns the
// merged document. Content entries are retained for history.
func (c *Concept) Finish(ctx context.Context, sessionID string) (string, []*Entry, error) {
	s, err := c.sessions.FindOne(ctx, store.ByID(sessionID))
	if pkgerrors.IsNotFound(err) {
		return "", nil, pkgerrors.NewStateError("no active collaborative session")
	}
	if err != nil {
		return "", nil, err
	}

	entries, err := c.ContentOf(ctx, s.ID)
	if err != nil {
		return "", nil, err
	}

	err = c.sessions.DeleteOne(ctx, store.ByID(s.ID).And("status", string(StatusOn)))
	if pkgerrors.IsNotFound(err) {
		return "", nil, pkgerrors.NewConflictError("session was concurrently finished")
	}
	if err != nil {
		return "", nil, err
	}

	merged := strings.Join(lo.Map(entries, func(e *Entry, _ int) string { return e.Text }), " ")
	c.logger.Info("collaborative session finished",
		zap.String("sessionId", s.ID),
		zap.Int("entries", len(entries)),
	)
	return merged, entries, nil
}

// ByPair returns the live session for an unordered pair of users.
func (c *Concept) ByPair(ctx context.Context, a, b string) (*Session, error) {
	s, err := c.sessions.FindOne(ctx, store.Where("pairKey", identity.UnorderedPairKey(a, b)))
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewNotFoundError("collaborative session")
	}
	return s, err
}

// ContentOf returns the session's entries oldest first. It works for live
// and finished sessions alike; liveness checks belong to the caller.
func (c *Concept) ContentOf(ctx context.Context, sessionID string) ([]*Entry, error) {
	return c.entries.FindMany(ctx,
		store.Where("sessionId", sessionID).OrderBy("seq", store.SortAscending),
	)
}

// History returns every entry ever written for the chat, across sessions,
// oldest first.
func (c *Concept) History(ctx context.Context, chatID string) ([]*Entry, error) {
	return c.entries.FindMany(ctx,
		store.Where("chatId", chatID).
			OrderBy("createdAt", store.SortAscending).
			OrderBy("seq", store.SortAscending),
	)
}
