// Package collab owns the turn-based collaborative editing session over a
// chat's shared content stream. The session's turn field is the only
// concurrency control for the stream: every turn/status mutation is a
// compare-and-set against the previously read state.
package collab

import (
	"mosaic-backend/infrastructure/persistence/store"
)

// Status is the session lifecycle state. There is no stored "off" state:
// finishing deletes the live record, so absence means Off.
type Status string

const (
	StatusOn Status = "on"
)

// Session is a live collaborative session. PairKey is the canonical
// unordered participant pair; at most one live session exists per pair.
// Turn always names one of the two participants while the session is on.
// Entries counts appended content entries and doubles as the CAS token
// for sequence numbers.
type Session struct {
	store.Base
	PairKey string `json:"pairKey"`
	ChatID  string `json:"chatId"`
	UserA   string `json:"userA"`
	UserB   string `json:"userB"`
	Status  Status `json:"status"`
	Turn    string `json:"turn"`
	Entries int    `json:"entries"`
}

// HasParticipant reports whether the user belongs to the session.
func (s *Session) HasParticipant(userID string) bool {
	return s.UserA == userID || s.UserB == userID
}

// OtherParticipant returns the participant that is not userID.
func (s *Session) OtherParticipant(userID string) string {
	if s.UserA == userID {
		return s.UserB
	}
	return s.UserA
}

// Entry is one append-only contribution to the collaborative document.
// Entries are never deleted; they outlive the session that produced them.
type Entry struct {
	store.Base
	ChatID    string `json:"chatId"`
	SessionID string `json:"sessionId"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Seq       int    `json:"seq"`
}
