package gate

import (
	"strings"

	"golang.org/x/text/language"

	"soko/internal/access"
	"soko/internal/session/models"
	"soko/internal/userctx"
)

// Policy is the immutable rule set the gate evaluates against. Built once
// at startup; safe for concurrent use.
type Policy struct {
	// Table maps path prefixes to allowed roles.
	Table *access.Table

	// Landing maps users to their default landing path.
	Landing *access.Landing

	// PublicPaths are locale-free paths anonymous visitors may reach.
	// Authenticated users are bounced off them to their landing page.
	PublicPaths map[string]struct{}

	// PublicPrefixes extend PublicPaths for routes carrying variable
	// suffixes, like invite tokens and auth callbacks.
	PublicPrefixes []string

	// WelcomePath is the onboarding flow entry point.
	WelcomePath string

	// LoginPath is where anonymous visitors are sent.
	LoginPath string
}

// DefaultPolicy returns the production rule set over the given tables.
func DefaultPolicy(table *access.Table, landing *access.Landing) *Policy {
	return &Policy{
		Table:   table,
		Landing: landing,
		PublicPaths: map[string]struct{}{
			"/":       {},
			"/login":  {},
			"/signup": {},
			"/invite": {},
		},
		PublicPrefixes: []string{"/invite/", "/auth/"},
		WelcomePath:    "/welcome",
		LoginPath:      "/login",
	}
}

// Input is everything one evaluation may consult. The middleware gathers
// it; Evaluate itself performs no I/O.
type Input struct {
	// OriginalPath is the path as requested, locale segment included.
	OriginalPath string

	// Path is the locale-free path every rule matches against.
	Path string

	// Locale is the resolved locale, either from the path segment or
	// negotiated from Accept-Language.
	Locale language.Tag

	// HadLocale reports whether OriginalPath carried a locale segment.
	HadLocale bool

	// Identity is nil for anonymous visitors.
	Identity *models.Identity

	// User is the profile record for Identity; nil when anonymous or
	// when the lookup failed.
	User *userctx.UserContext

	// LookupErr is the profile lookup failure, if any.
	LookupErr error
}

// Evaluate runs the precedence chain and returns exactly one decision.
//
// Order is fixed: locale, authentication, profile integrity, onboarding,
// public-path bounce, role authorization, allow. Each rule either fires
// with a terminal decision or defers to the next; no rule inspects the
// outcome of another.
func (p *Policy) Evaluate(in Input) Decision {
	if !in.HadLocale {
		return Decision{
			Kind:     KindLocaleRedirect,
			Location: localize(in.Locale, in.Path),
		}
	}

	if in.Identity == nil {
		if p.isPublic(in.Path) {
			return Decision{Kind: KindAllow}
		}
		return Decision{
			Kind:     KindAuthRedirect,
			Location: localize(in.Locale, p.LoginPath),
		}
	}

	if in.User == nil {
		// A session without a profile record is an integrity fault, and
		// a failed lookup is treated identically: transient data service
		// outages must never grant access. The terminated session makes
		// the login page reachable instead of a redirect loop.
		return Decision{
			Kind:       KindProfileMissingRedirect,
			Location:   localize(in.Locale, p.LoginPath) + "?error=profile_not_found",
			EndSession: true,
		}
	}

	if !in.User.SetupComplete {
		if in.Path == p.WelcomePath || strings.HasPrefix(in.Path, p.WelcomePath+"/") {
			return Decision{Kind: KindAllow}
		}
		return Decision{
			Kind:     KindOnboardingRedirect,
			Location: localize(in.Locale, p.WelcomePath),
		}
	}
	if in.Path == p.WelcomePath || strings.HasPrefix(in.Path, p.WelcomePath+"/") {
		return Decision{
			Kind:     KindOnboardingCompleteRedirect,
			Location: p.landingFor(in),
		}
	}

	if p.isPublic(in.Path) {
		return Decision{
			Kind:     KindPublicPathRedirect,
			Location: p.landingFor(in),
		}
	}

	if roles, ok := p.Table.RolesAllowed(in.Path); ok && !roles.Contains(in.User.Role) {
		return Decision{
			Kind:     KindPermissionDenied,
			Location: p.landingFor(in),
		}
	}

	return Decision{Kind: KindAllow}
}

func (p *Policy) isPublic(path string) bool {
	if _, ok := p.PublicPaths[path]; ok {
		return true
	}
	for _, prefix := range p.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (p *Policy) landingFor(in Input) string {
	return localize(in.Locale, p.Landing.DefaultLanding(in.User.Role, in.User.BusinessType))
}

// localize prefixes a locale-free path with the locale segment. The root
// path collapses to the bare segment.
func localize(tag language.Tag, path string) string {
	if path == "/" || path == "" {
		return "/" + tag.String()
	}
	return "/" + tag.String() + path
}
