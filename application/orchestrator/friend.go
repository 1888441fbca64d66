package orchestrator

import (
	"context"

	"mosaic-backend/application/workflows"
	"mosaic-backend/domain/chat"
	"mosaic-backend/domain/friend"
)

// SendFriendRequestInput carries the compound friend-request operation:
// the request itself plus the opening message it is delivered with.
type SendFriendRequestInput struct {
	SessionID   string `json:"sessionId" validate:"required"`
	To          string `json:"to" validate:"required"`
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"messageType" validate:"required"`
}

// SendFriendRequest runs the canonical compound workflow:
// find-or-create the pair's chat, send the opening message, record the
// message in the sender's gallery, then create the friend request.
//
// Best-effort ordered composition: if a later step fails, earlier steps
// stay committed — e.g. a duplicate request leaves the chat message and
// gallery item in place. The chat step is find-or-create on the unordered
// pair, so re-running the workflow never duplicates the chat.
func (o *Orchestrator) SendFriendRequest(ctx context.Context, input SendFriendRequestInput) (*Response, error) {
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
		Name: "send-friend-request",
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
			{Name: "create-friend-request", Run: func(ctx context.Context) error {
				_, err := o.friends.SendRequest(ctx, userID, toUser.ID)
				return err
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Response{Message: "Message sent! Friend request sent!"}, nil
}

// AcceptFriendRequest accepts the pending request from the named user.
func (o *Orchestrator) AcceptFriendRequest(ctx context.Context, sessionID, fromUsername string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fromUser, err := o.users.GetByUsername(ctx, fromUsername)
	if err != nil {
		return nil, err
	}
	if _, err := o.friends.AcceptRequest(ctx, fromUser.ID, userID); err != nil {
		return nil, err
	}
	return &Response{Message: "Friend request accepted!"}, nil
}

// RejectFriendRequest rejects the pending request from the named user.
func (o *Orchestrator) RejectFriendRequest(ctx context.Context, sessionID, fromUsername string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fromUser, err := o.users.GetByUsername(ctx, fromUsername)
	if err != nil {
		return nil, err
	}
	if _, err := o.friends.RejectRequest(ctx, fromUser.ID, userID); err != nil {
		return nil, err
	}
	return &Response{Message: "Friend request rejected!"}, nil
}

// RemoveFriendRequest withdraws the logged-in user's pending request to
// the named user.
func (o *Orchestrator) RemoveFriendRequest(ctx context.Context, sessionID, toUsername string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	toUser, err := o.users.GetByUsername(ctx, toUsername)
	if err != nil {
		return nil, err
	}
	if err := o.friends.RemoveRequest(ctx, userID, toUser.ID); err != nil {
		return nil, err
	}
	return &Response{Message: "Friend request removed!"}, nil
}

// RemoveFriend deletes the friendship with the named user. Chat history
// between the two is deliberately untouched; chats belong to a different
// concept.
func (o *Orchestrator) RemoveFriend(ctx context.Context, sessionID, friendUsername string) (*Response, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	friendUser, err := o.users.GetByUsername(ctx, friendUsername)
	if err != nil {
		return nil, err
	}
	if err := o.friends.RemoveFriend(ctx, userID, friendUser.ID); err != nil {
		return nil, err
	}
	return &Response{Message: "Unfriended!"}, nil
}

// GetFriends returns the logged-in user's friends as usernames.
func (o *Orchestrator) GetFriends(ctx context.Context, sessionID string) ([]string, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids, err := o.friends.GetFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return o.users.UsernamesOf(ctx, ids)
}

// FriendRequestView is a friend request with ids resolved to usernames.
type FriendRequestView struct {
	From   string               `json:"from"`
	To     string               `json:"to"`
	Status friend.RequestStatus `json:"status"`
}

// GetFriendRequests returns every request involving the logged-in user,
// with usernames resolved.
func (o *Orchestrator) GetFriendRequests(ctx context.Context, sessionID string) ([]FriendRequestView, error) {
	userID, err := o.currentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	requests, err := o.friends.GetRequests(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]FriendRequestView, 0, len(requests))
	for _, r := range requests {
		names, err := o.users.UsernamesOf(ctx, []string{r.From, r.To})
		if err != nil {
			return nil, err
		}
		views = append(views, FriendRequestView{From: names[0], To: names[1], Status: r.Status})
	}
	return views, nil
}
