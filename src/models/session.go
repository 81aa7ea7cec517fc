package models

import "time"

// Session is the server-side record behind an issued token. Logout
// deletes the row, which invalidates the token even before it expires.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
