// Package chat owns private chat sessions between two users and the
// messages exchanged in them.
package chat

import (
	"mosaic-backend/infrastructure/persistence/store"
)

// Session is a private chat between two users. PairKey is the canonical
// unordered-pair key; at most one session exists per pair.
type Session struct {
	store.Base
	PairKey string `json:"pairKey"`
	UserA   string `json:"userA"`
	UserB   string `json:"userB"`
}

// HasParticipant reports whether the user is one of the chat's two members.
func (s *Session) HasParticipant(userID string) bool {
	return s.UserA == userID || s.UserB == userID
}

// OtherParticipant returns the chat member that is not userID.
func (s *Session) OtherParticipant(userID string) string {
	if s.UserA == userID {
		return s.UserB
	}
	return s.UserA
}

// Message is one immutable chat message, ordered by creation time.
type Message struct {
	store.Base
	ChatID string `json:"chatId"`
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}
