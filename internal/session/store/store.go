// Package store persists session records. Implementations return sentinel
// errors for factual states (not found, revoked); the resolver translates
// them into ordinary anonymous outcomes.
package store

import (
	"context"
	"time"

	"soko/internal/session/models"
	id "soko/pkg/domain"
)

// Store is the persistence contract for session records.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	FindByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Revoke(ctx context.Context, sessionID id.SessionID, now time.Time) error
}
