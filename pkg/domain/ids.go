// Package domain holds typed identifiers shared across modules. Typed IDs
// prevent cross-type assignment at compile time; a UserID can never be passed
// where a SessionID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "soko/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated account.
	UserID uuid.UUID

	// SessionID identifies a persisted browser session.
	SessionID uuid.UUID
)

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses a string into a UserID. IDs must be valid, non-nil
// UUIDs; anything else is rejected at the trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

// ParseSessionID parses a string into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	return SessionID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(dErrors.CodeInvalidInput, "id is not a valid uuid", err)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil uuid")
	}
	return u, nil
}
