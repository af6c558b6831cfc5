// Package models holds the session domain model shared by the resolver and
// its stores.
package models

import (
	"time"

	id "soko/pkg/domain"
)

// Status tracks the session lifecycle.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Identity is the outcome of session resolution: an authenticated user, or
// nil for an anonymous visitor.
type Identity struct {
	UserID    id.UserID
	SessionID id.SessionID
}

// Session is the minimal persisted record backing a browser session. The
// access cookie references it by ID; the refresh cookie by the opaque
// refresh token.
type Session struct {
	ID           id.SessionID `json:"id"`
	UserID       id.UserID    `json:"user_id"`
	RefreshToken string       `json:"refresh_token"`
	Status       Status       `json:"status"`

	// Device is a human-readable label ("Chrome on Linux") shown on the
	// platform's active-sessions screen.
	Device    string `json:"device,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Active reports whether the session can still authenticate requests.
func (s *Session) Active(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.ExpiresAt)
}
