// Package userctx fetches the authoritative user record backing every
// authorization decision.
//
// The record is fetched fresh on every request and never cached: role and
// onboarding state can change between requests, and a stale grant is a
// security fault while a stale denial is merely an extra redirect.
package userctx

import (
	"context"

	"soko/pkg/domain"
)

// UserContext is the authoritative per-user record from the data service.
type UserContext struct {
	Role          domain.Role         `json:"role"`
	BusinessType  domain.BusinessType `json:"business_type"`
	SetupComplete bool                `json:"setup_complete"`
}

// Provider resolves an identity to its user context. A nil record or any
// error is an identity integrity fault; callers must fail closed.
type Provider interface {
	Lookup(ctx context.Context, userID domain.UserID) (*UserContext, error)
}
