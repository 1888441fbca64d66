package orchestrator

import (
	"context"

	"mosaic-backend/application/workflows"
	"mosaic-backend/domain/chat"
	"mosaic-backend/domain/collab"
	pkgerrors "mosaic-backend/pkg/errors"
)

// StartCollaborativeSessionInput starts turn-based editing with the named
// user, optionally seeding the document with an opening contribution.
type StartCollaborativeSessionInput struct {
	SessionID string `json:"sessionId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Message   string `json:"message"`
}

// CollabSessionResult pairs an acknowledgement with the session state.
type CollabSessionResult struct {
	Message string          `json:"message"`
	Session *collab.Session `json:"session"`
}

// StartCollaborativeSession opens (or returns) the collaborative session
// for the pair. The whole operation is find-or-create on the unordered
// pair: invoking it twice yields the same chat and the same live session,
// never duplicates. When the session already exists the opening message
// is ignored; contributions go through Collaborate.
func (o *Orchestrator) StartCollaborativeSession(ctx context.Context, input StartCollaborativeSessionInput) (*CollabSessionResult, error) {
	if err := o.validateInput(input); err != nil {
		return nil, err
	}

	userID, err := o.currentUser(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	partner, err := o.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	if existing, err := o.collabs.ByPair(ctx, userID, partner.ID); err == nil {
		return &CollabSessionResult{Message: "Collaborative session already active", Session: existing}, nil
	} else if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	var (
		chatSession *chat.Session
		session     *collab.Session
	)
	err = o.runner.Execute(ctx, workflows.Workflow{
		Name: "start-collaborative-session",
		Steps: []workflows.Step{
			{Name: "find-or-create-chat", Run: func(ctx context.Context) error {
				var err error
				chatSession, err = o.chats.FindOrCreate(ctx, userID, partner.ID)
				return err
			}},
			{Name: "start-session", Run: func(ctx context.Context) error {
				var err error
				session, err = o.collabs.Start(ctx, chatSession.ID, userID, partner.ID, input.Message)
				return err
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &CollabSessionResult{Message: "Collaborative session started!", Session: session}, nil
}

// CollaborateInput appends one turn's contribution.
type CollaborateInput struct {
	SessionID string `json:"sessionId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// Collaborate appends the logged-in user's contribution to the live
// session with the named user and passes the turn.
func (o *Orchestrator) Collaborate(ctx context.Context, input CollaborateInput) (*CollabSessionResult, error) {
	if err := o.validateInput(input); err != nil {
		return nil, err
	}

	userID, err := o.currentUser(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	partner, err := o.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	session, err := o.collabs.ByPair(ctx, userID, partner.ID)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewStateError("no active collaborative session with this user")
	}
	if err != nil {
		return nil, err
	}

	updated, _, err := o.collabs.Collab(ctx, session.ID, userID, input.Message)
	if err != nil {
		return nil, err
	}
	return &CollabSessionResult{Message: "Contribution added!", Session: updated}, nil
}

// FinishResult carries the merged collaborative document.
type FinishResult struct {
	Message  string `json:"message"`
	Document string `json:"document"`
}

// FinishCollaborativeSession ends the live session with the named user
// and returns the stitched-together document. Content entries survive as
// history.
func (o *Orchestrator) FinishCollaborativeSession(ctx context.Context, sessionID, username string) (*FinishResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	partner, err := o.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	session, err := o.collabs.ByPair(ctx, userID, partner.ID)
	if pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.NewStateError("no active collaborative session with this user")
	}
	if err != nil {
		return nil, err
	}

	document, _, err := o.collabs.Finish(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return &FinishResult{Message: "Collaborative session finished!", Document: document}, nil
}

// GetCollaborativeContent returns the live session's entries oldest
// first. After Finish the live session is gone and this returns NotFound;
// historical entries stay reachable through GetCollaborativeHistory.
func (o *Orchestrator) GetCollaborativeContent(ctx context.Context, sessionID, username string) ([]*collab.Entry, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	partner, err := o.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	session, err := o.collabs.ByPair(ctx, userID, partner.ID)
	if err != nil {
		return nil, err
	}
	return o.collabs.ContentOf(ctx, session.ID)
}

// GetCollaborativeMode returns the live session state for the pair.
func (o *Orchestrator) GetCollaborativeMode(ctx context.Context, sessionID, username string) (*collab.Session, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	partner, err := o.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return o.collabs.ByPair(ctx, userID, partner.ID)
}

// GetCollaborativeHistory returns every entry ever written in the pair's
// chat, across finished sessions.
func (o *Orchestrator) GetCollaborativeHistory(ctx context.Context, sessionID, username string) ([]*collab.Entry, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	partner, err := o.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	chatSession, err := o.chats.ByPair(ctx, userID, partner.ID)
	if err != nil {
		return nil, err
	}
	return o.collabs.History(ctx, chatSession.ID)
}
