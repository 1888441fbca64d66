// Package orchestrator composes concept actions into the external
// operations callers invoke. Concepts never call each other; every
// cross-concept sequence is declared here as an ordered workflow so the
// partial-failure behavior of each operation stays auditable.
package orchestrator

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mosaic-backend/application/workflows"
	"mosaic-backend/domain/chat"
	"mosaic-backend/domain/collab"
	"mosaic-backend/domain/friend"
	"mosaic-backend/domain/gallery"
	"mosaic-backend/domain/post"
	"mosaic-backend/domain/trash"
	"mosaic-backend/domain/user"
	"mosaic-backend/domain/websession"
	pkgerrors "mosaic-backend/pkg/errors"
)

// Response is the minimal caller-facing acknowledgement.
type Response struct {
	Message string `json:"message"`
}

// Orchestrator is the single entry point for external operations. It
// holds every concept module and issues ordered calls into them.
type Orchestrator struct {
	users     *user.Concept
	sessions  *websession.Concept
	friends   *friend.Concept
	chats     *chat.Concept
	collabs   *collab.Concept
	galleries *gallery.Concept
	trashcan  *trash.Concept
	posts     *post.Concept

	runner   *workflows.Runner
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrchestrator wires the orchestrator to the concept modules.
func NewOrchestrator(
	users *user.Concept,
	sessions *websession.Concept,
	friends *friend.Concept,
	chats *chat.Concept,
	collabs *collab.Concept,
	galleries *gallery.Concept,
	trashcan *trash.Concept,
	posts *post.Concept,
	runner *workflows.Runner,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		users:     users,
		sessions:  sessions,
		friends:   friends,
		chats:     chats,
		collabs:   collabs,
		galleries: galleries,
		trashcan:  trashcan,
		posts:     posts,
		runner:    runner,
		validate:  validator.New(),
		logger:    logger,
	}
}

// validateInput translates struct-tag violations into BadValues errors.
func (o *Orchestrator) validateInput(input any) error {
	if err := o.validate.Struct(input); err != nil {
		return pkgerrors.NewBadValuesError("invalid input: " + err.Error())
	}
	return nil
}

// currentUser resolves the acting user from a web session id.
func (o *Orchestrator) currentUser(ctx context.Context, sessionID string) (string, error) {
	return o.sessions.GetUser(ctx, sessionID)
}

// CreateUserInput carries the fields for account registration.
type CreateUserInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResult pairs an acknowledgement with the created or fetched account.
type UserResult struct {
	Message string    `json:"message"`
	User    user.View `json:"user"`
}

// CreateUser registers a new account.
func (o *Orchestrator) CreateUser(ctx context.Context, input CreateUserInput) (*UserResult, error) {
	if err := o.validateInput(input); err != nil {
		return nil, err
	}
	u, err := o.users.Create(ctx, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	return &UserResult{Message: "User created successfully!", User: u.View()}, nil
}

// LoginInput carries credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult returns the opened session id for the transport layer to
// carry however it sees fit.
type LoginResult struct {
	Message   string    `json:"message"`
	SessionID string    `json:"sessionId"`
	User      user.View `json:"user"`
}

// Login authenticates and opens a web session.
func (o *Orchestrator) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := o.validateInput(input); err != nil {
		return nil, err
	}

	var (
		u *user.User
		s *websession.Session
	)
	err := o.runner.Execute(ctx, workflows.Workflow{
		Name: "login",
		Steps: []workflows.Step{
			{Name: "authenticate", Run: func(ctx context.Context) error {
				var err error
				u, err = o.users.Authenticate(ctx, input.Username, input.Password)
				return err
			}},
			{Name: "start-session", Run: func(ctx context.Context) error {
				var err error
				s, err = o.sessions.Start(ctx, u.ID)
				return err
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Message: "Logged in!", SessionID: s.ID, User: u.View()}, nil
}

// Logout ends the web session.
func (o *Orchestrator) Logout(ctx context.Context, sessionID string) (*Response, error) {
	if err := o.sessions.End(ctx, sessionID); err != nil {
		return nil, err
	}
	return &Response{Message: "Logged out!"}, nil
}

// GetSessionUser returns the account behind a session.
func (o *Orchestrator) GetSessionUser(ctx context.Context, sessionID string) (*UserResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	u, err := o.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{Message: "Session user", User: u.View()}, nil
}

// GetUsers lists every account.
func (o *Orchestrator) GetUsers(ctx context.Context) ([]user.View, error) {
	users, err := o.users.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]user.View, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

// GetUser fetches one account by username.
func (o *Orchestrator) GetUser(ctx context.Context, username string) (*UserResult, error) {
	u, err := o.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &UserResult{Message: "User found", User: u.View()}, nil
}

// UpdateUser renames the logged-in account.
func (o *Orchestrator) UpdateUser(ctx context.Context, sessionID, username string) (*UserResult, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	u, err := o.users.Update(ctx, userID, username)
	if err != nil {
		return nil, err
	}
	return &UserResult{Message: "User updated successfully!", User: u.View()}, nil
}

// DeleteUser removes the logged-in account. The session ends before the
// account is deleted; if deletion then fails the caller is logged out but
// the account survives, which is the documented partial effect of this
// workflow.
func (o *Orchestrator) DeleteUser(ctx context.Context, sessionID string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	err = o.runner.Execute(ctx, workflows.Workflow{
		Name: "delete-user",
		Steps: []workflows.Step{
			{Name: "end-sessions", Run: func(ctx context.Context) error {
				return o.sessions.EndAllFor(ctx, userID)
			}},
			{Name: "delete-account", Run: func(ctx context.Context) error {
				return o.users.Delete(ctx, userID)
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Response{Message: "User deleted!"}, nil
}
