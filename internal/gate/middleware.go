package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"soko/internal/gate/metrics"
	"soko/internal/locale"
	"soko/internal/session"
	"soko/internal/session/models"
	"soko/internal/userctx"
	audit "soko/pkg/platform/audit"
	"soko/pkg/requestcontext"
)

// RewriteHeader marks a request that re-entered the process through an
// internal rewrite and was already evaluated once. The marker is only
// trustworthy inside the process: the transport edge must strip it from
// inbound client requests before the gate sees them.
const RewriteHeader = "X-Soko-Rewrite"

// SessionResolver exchanges request cookies for an identity and can
// terminate the backing session.
type SessionResolver interface {
	Resolve(ctx context.Context, cookies *session.CookieSync) *models.Identity
	Terminate(ctx context.Context, cookies *session.CookieSync)
}

// Gate evaluates every page request against the policy and either lets it
// through with identity and locale on the context, or redirects.
type Gate struct {
	locales  *locale.Locales
	policy   *Policy
	resolver SessionResolver
	users    userctx.Provider
	auditor  audit.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New wires a gate. auditor and m may be nil, which disables audit emission
// and metrics respectively.
func New(locales *locale.Locales, policy *Policy, resolver SessionResolver, users userctx.Provider, auditor audit.Emitter, m *metrics.Metrics, logger *slog.Logger) *Gate {
	return &Gate{
		locales:  locales,
		policy:   policy,
		resolver: resolver,
		users:    users,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("soko/internal/gate"),
	}
}

// Middleware returns the gate as a standard net/http middleware.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason, skip := skipReason(r); skip {
			g.metrics.IncrementBypassed(reason)
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := g.tracer.Start(r.Context(), "gate.evaluate")
		r = r.WithContext(ctx)
		start := time.Now()

		cookies := session.NewCookieSync(w, r)
		in := g.gather(ctx, r, cookies)
		decision := g.policy.Evaluate(in)

		span.SetAttributes(
			attribute.String("gate.decision", string(decision.Kind)),
			attribute.String("gate.path", in.Path),
		)
		span.End()

		g.metrics.IncrementDecision(string(decision.Kind))
		g.metrics.ObserveEvaluateLatency(time.Since(start))

		if decision.EndSession {
			g.resolver.Terminate(ctx, cookies)
		}
		g.emitAudit(ctx, in, decision)

		if !decision.Allowed() {
			// 307 preserves the method; the browser retries the request
			// verbatim at the corrected location.
			http.Redirect(w, r, decision.Location, http.StatusTemporaryRedirect)
			return
		}

		ctx = requestcontext.WithLocale(ctx, in.Locale)
		if in.Identity != nil {
			ctx = requestcontext.WithUserID(ctx, in.Identity.UserID)
			ctx = requestcontext.WithSessionID(ctx, in.Identity.SessionID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// gather performs the I/O an evaluation needs: locale split or negotiation,
// session resolution and, for authenticated requests, the profile lookup.
func (g *Gate) gather(ctx context.Context, r *http.Request, cookies *session.CookieSync) Input {
	in := Input{OriginalPath: r.URL.Path}

	tag, rest, ok := g.locales.Split(r.URL.Path)
	if !ok {
		// The locale redirect is terminal; the session and profile stay
		// untouched until the client replays the localized path.
		in.Locale = g.locales.Negotiate(r.Header.Get("Accept-Language"))
		in.Path = r.URL.Path
		return in
	}
	in.HadLocale = true
	in.Locale = tag
	in.Path = rest

	in.Identity = g.resolver.Resolve(ctx, cookies)
	if in.Identity == nil {
		// Anonymous visitors have no profile to look up.
		return in
	}

	user, err := g.users.Lookup(ctx, in.Identity.UserID)
	if err != nil {
		g.logger.WarnContext(ctx, "profile lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", in.Identity.UserID,
			"error", err,
		)
		in.LookupErr = err
		return in
	}
	in.User = user
	return in
}

// skipReason reports whether the request never reaches evaluation: asset
// requests, API routes, framework internals, and explicitly marked
// prefetch or rewrite traffic.
func skipReason(r *http.Request) (string, bool) {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/") || path == "/api":
		return "api", true
	case strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/_soko/"):
		return "static", true
	case strings.Contains(path, "."):
		// favicon.ico, robots.txt, hashed asset bundles. Page routes
		// never contain a dot, so any dot anywhere marks an asset.
		return "static", true
	case strings.Contains(r.Header.Get("Sec-Purpose"), "prefetch"):
		return "prefetch", true
	case r.Header.Get(RewriteHeader) != "":
		// Already evaluated once; an internal rewrite must not loop.
		return "rewrite", true
	}
	return "", false
}

var auditActions = map[Kind]audit.AuditEvent{
	KindAuthRedirect:           audit.EventAuthRedirect,
	KindPermissionDenied:       audit.EventPermissionDenied,
	KindProfileMissingRedirect: audit.EventProfileMissing,
	KindOnboardingRedirect:     audit.EventOnboardingBounce,
}

// emitAudit records decisions of interest. Emission is best effort; a full
// buffer or broken store never affects the response.
func (g *Gate) emitAudit(ctx context.Context, in Input, decision Decision) {
	if g.auditor == nil {
		return
	}
	action, ok := auditActions[decision.Kind]
	if !ok {
		return
	}

	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    string(action),
		Path:      in.Path,
		Decision:  string(decision.Kind),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
	}
	if in.Identity != nil {
		event.UserID = in.Identity.UserID
	}
	if in.LookupErr != nil {
		event.Reason = in.LookupErr.Error()
	}

	if err := g.auditor.Emit(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"action", event.Action,
			"error", err,
		)
	}

	if decision.EndSession {
		terminated := audit.Event{
			Timestamp: event.Timestamp,
			UserID:    event.UserID,
			Action:    string(audit.EventSessionTerminated),
			Path:      in.Path,
			Decision:  string(decision.Kind),
			RequestID: event.RequestID,
			ClientIP:  event.ClientIP,
		}
		if err := g.auditor.Emit(ctx, terminated); err != nil {
			g.logger.WarnContext(ctx, "audit emit failed",
				"request_id", requestcontext.RequestID(ctx),
				"action", terminated.Action,
				"error", err,
			)
		}
	}
}
