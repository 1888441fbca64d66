package orchestrator

import (
	"context"

	"mosaic-backend/application/workflows"
	"mosaic-backend/domain/chat"
	pkgerrors "mosaic-backend/pkg/errors"
)

// SendChatMessageInput carries a direct message plus the gallery record
// the sender keeps of it.
type SendChatMessageInput struct {
	SessionID   string `json:"sessionId" validate:"required"`
	To          string `json:"to" validate:"required"`
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"messageType" validate:"required"`
}

// SendChatMessage delivers a message to the named user, creating the
// pair's chat on first contact, and records the message in the sender's
// gallery. If the gallery step fails the message remains delivered; the
// workflow is not rolled back.
func (o *Orchestrator) SendChatMessage(ctx context.Context, input SendChatMessageInput) (*Response, error) {
	if err := o.validateInput(input); err != nil {
		return nil, err
	}

	userID, err := o.currentUser(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	toUser, err := o.users.GetByUsername(ctx, input.To)
	if err != nil {
		return nil, err
	}

	var chatSession *chat.Session
	err = o.runner.Execute(ctx, workflows.Workflow{
		Name: "send-chat-message",
		Steps: []workflows.Step{
			{Name: "find-or-create-chat", Run: func(ctx context.Context) error {
				var err error
				chatSession, err = o.chats.FindOrCreate(ctx, userID, toUser.ID)
				return err
			}},
			{Name: "send-message", Run: func(ctx context.Context) error {
				_, err := o.chats.SendMessage(ctx, chatSession.ID, userID, input.Message)
				return err
			}},
			{Name: "record-gallery-item", Run: func(ctx context.Context) error {
				_, err := o.galleries.Add(ctx, userID, input.MessageType, input.Message)
				return err
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Response{Message: "Message sent!"}, nil
}

// GetChatMessages returns the messages between the logged-in user and
// the named user, oldest first.
func (o *Orchestrator) GetChatMessages(ctx context.Context, sessionID, username string) ([]*chat.Message, error) {
	if username == "" {
		return nil, pkgerrors.NewBadValuesError("username cannot be empty")
	}

	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	otherUser, err := o.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	chatSession, err := o.chats.ByPair(ctx, userID, otherUser.ID)
	if err != nil {
		return nil, err
	}
	return o.chats.Messages(ctx, chatSession.ID)
}

// GetChats returns the chats the logged-in user participates in, without
// their messages.
func (o *Orchestrator) GetChats(ctx context.Context, sessionID string) ([]*chat.Session, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.chats.ChatsOf(ctx, userID)
}

// DeleteChat removes a chat the logged-in user participates in. Message
// history is retained.
func (o *Orchestrator) DeleteChat(ctx context.Context, sessionID, chatID string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	chatSession, err := o.chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chatSession.HasParticipant(userID) {
		return nil, pkgerrors.NewUnauthorizedError("user is not a member of this chat")
	}
	if err := o.chats.Delete(ctx, chatID); err != nil {
		return nil, err
	}
	return &Response{Message: "Chat deleted!"}, nil
}
