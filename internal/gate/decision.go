// Package gate is the request gating engine: one deterministic decision per
// page request, produced by a fixed precedence over locale, session, profile,
// onboarding and role checks. Exactly one decision fires; there is no
// fall-through and no second evaluation.
package gate

// Kind identifies which precedence rule produced a decision.
type Kind string

const (
	// KindAllow lets the request through to the page handler.
	KindAllow Kind = "allow"

	// KindLocaleRedirect sends the client to the localized form of the
	// path it asked for.
	KindLocaleRedirect Kind = "locale_redirect"

	// KindAuthRedirect sends an anonymous client to the login page.
	KindAuthRedirect Kind = "auth_redirect"

	// KindProfileMissingRedirect fails closed when an authenticated user
	// has no usable profile record. The session is terminated.
	KindProfileMissingRedirect Kind = "profile_missing_redirect"

	// KindOnboardingRedirect pins users with incomplete setup to the
	// welcome flow.
	KindOnboardingRedirect Kind = "onboarding_redirect"

	// KindOnboardingCompleteRedirect bounces fully set up users off the
	// welcome flow to their landing page.
	KindOnboardingCompleteRedirect Kind = "onboarding_complete_redirect"

	// KindPublicPathRedirect bounces authenticated users off public
	// pages like login to their landing page.
	KindPublicPathRedirect Kind = "public_path_redirect"

	// KindPermissionDenied redirects a user whose role is not allowed on
	// the requested path to their landing page.
	KindPermissionDenied Kind = "permission_denied"
)

// Decision is the single outcome of one gate evaluation.
type Decision struct {
	Kind Kind

	// Location is the redirect target for every kind except KindAllow.
	Location string

	// EndSession instructs the gate to revoke the session and clear the
	// cookie pair before redirecting.
	EndSession bool
}

// Allowed reports whether the request proceeds to its handler.
func (d Decision) Allowed() bool {
	return d.Kind == KindAllow
}
