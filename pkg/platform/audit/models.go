// Package audit captures gate decisions worth keeping: who was turned
// away from what, and why. Events are transport-agnostic so stores and
// sinks can fan out.
package audit

import (
	"context"
	"time"

	id "soko/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, driving
// retention policy and routing.
type EventCategory string

const (
	// CategorySecurity covers events that feed security monitoring:
	// denied access, terminated sessions, profile integrity faults.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine visibility events that can be
	// sampled or aggregated with short retention.
	CategoryOperations EventCategory = "operations"
)

// Event records one gate decision of interest.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Action    string
	Path      string
	Decision  string
	Reason    string
	RequestID string
	ClientIP  string
}

// AuditEvent enumerates the actions the gate emits.
type AuditEvent string

const (
	EventAuthRedirect      AuditEvent = "auth_redirect"
	EventPermissionDenied  AuditEvent = "permission_denied"
	EventProfileMissing    AuditEvent = "profile_not_found"
	EventSessionTerminated AuditEvent = "session_terminated"
	EventOnboardingBounce  AuditEvent = "onboarding_redirect"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthRedirect:      CategoryOperations,
	EventPermissionDenied:  CategorySecurity,
	EventProfileMissing:    CategorySecurity,
	EventSessionTerminated: CategorySecurity,
	EventOnboardingBounce:  CategoryOperations,
}

// Category maps an action to its category, defaulting to operations for
// unknown actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// Store is the persistence contract for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what the gate sees: fire-and-forget event emission.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
