// Package friend owns friend requests and the symmetric friendship edges
// acceptance creates.
package friend

import (
	"mosaic-backend/infrastructure/persistence/store"
)

// RequestStatus is the lifecycle state of a friend request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Request is a directed friend request. At most one pending request may
// exist per ordered (From, To) pair.
type Request struct {
	store.Base
	From   string        `json:"from"`
	To     string        `json:"to"`
	Status RequestStatus `json:"status"`
}

// Friendship is the accepted relation, readable from both directions.
type Friendship struct {
	store.Base
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}
