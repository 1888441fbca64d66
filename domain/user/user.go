// Package user owns account records. Other concepts refer to users only
// by their opaque ids.
package user

import (
	"mosaic-backend/infrastructure/persistence/store"
)

// User is an account record. PasswordHash never leaves the concept in
// caller-facing views.
type User struct {
	store.Base
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// View is the caller-facing shape of a user, with credentials redacted.
type View struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// View redacts the record for callers.
func (u *User) View() View {
	return View{ID: u.ID, Username: u.Username}
}
