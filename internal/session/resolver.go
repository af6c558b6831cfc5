// Package session exchanges request cookies for an authenticated identity.
//
// An absent or invalid session is a normal outcome for an anonymous
// visitor, never an error: the resolver reports it as a nil Identity and
// the precedence engine decides what to do with it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mssola/useragent"

	"soko/internal/session/models"
	"soko/internal/session/store"
	id "soko/pkg/domain"
	"soko/pkg/requestcontext"
)

// Resolver validates the session cookie pair against the session store,
// refreshing and rewriting cookies as needed through the CookieSync.
type Resolver struct {
	store      store.Store
	signingKey []byte
	accessTTL  time.Duration
	logger     *slog.Logger
}

// NewResolver builds a resolver over the given store. accessTTL bounds the
// lifetime of freshly minted access cookies.
func NewResolver(st store.Store, signingKey string, accessTTL time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:      st,
		signingKey: []byte(signingKey),
		accessTTL:  accessTTL,
		logger:     logger,
	}
}

type accessClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Resolve exchanges cookies for an Identity. Returns nil for anonymous
// visitors; infrastructure faults are logged and also resolve to anonymous
// so a store outage degrades to a login redirect, never a 500 on every
// page.
func (r *Resolver) Resolve(ctx context.Context, cookies *CookieSync) *models.Identity {
	now := requestcontext.Now(ctx)

	if cookie, ok := cookies.Get(AccessCookie); ok {
		switch ident, expired := r.resolveAccess(ctx, cookie.Value, now); {
		case ident != nil:
			return ident
		case !expired:
			// Signature or claim garbage; drop the pair so we stop
			// re-parsing it on every request.
			cookies.Clear(AccessCookie)
			return r.resolveRefresh(ctx, cookies, now)
		}
	}

	return r.resolveRefresh(ctx, cookies, now)
}

// resolveAccess validates the access token and its backing session record.
// expired=true means the token was well-formed but past its expiry, which
// is the cue to attempt a refresh.
func (r *Resolver) resolveAccess(ctx context.Context, token string, now time.Time) (*models.Identity, bool) {
	claims, err := r.parseToken(token, true)
	if err != nil {
		return nil, isExpired(err)
	}

	ident, err := r.lookupActive(ctx, claims, now)
	if err != nil {
		return nil, false
	}
	return ident, false
}

// resolveRefresh exchanges the refresh cookie for a fresh access cookie.
// Every cookie rewrite goes through the CookieSync so both the inbound
// request and the outbound response observe it.
func (r *Resolver) resolveRefresh(ctx context.Context, cookies *CookieSync, now time.Time) *models.Identity {
	cookie, ok := cookies.Get(RefreshCookie)
	if !ok || cookie.Value == "" {
		return nil
	}

	sess, err := r.store.FindByRefreshToken(ctx, cookie.Value)
	if err != nil {
		r.logger.DebugContext(ctx, "refresh token rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		cookies.Clear(AccessCookie)
		cookies.Clear(RefreshCookie)
		return nil
	}
	if !sess.Active(now) {
		cookies.Clear(AccessCookie)
		cookies.Clear(RefreshCookie)
		return nil
	}

	token, expiry, err := r.mintAccessToken(sess, now)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to mint access token",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sess.ID,
			"error", err,
		)
		return nil
	}
	cookies.Set(AccessCookieFor(token, expiry))

	sess.LastSeenAt = now
	if label := deviceLabel(requestcontext.UserAgent(ctx)); label != "" {
		sess.Device = label
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		sess.IPAddress = ip
	}
	if err := r.store.Update(ctx, sess); err != nil {
		// Bookkeeping only; the refreshed cookie is already valid.
		r.logger.WarnContext(ctx, "failed to update session record",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sess.ID,
			"error", err,
		)
	}

	return &models.Identity{UserID: sess.UserID, SessionID: sess.ID}
}

// Terminate revokes the backing session record and expires both cookies.
// Used when the engine fails closed on a profile integrity fault.
func (r *Resolver) Terminate(ctx context.Context, cookies *CookieSync) {
	now := requestcontext.Now(ctx)

	var sessionID id.SessionID
	if cookie, ok := cookies.Get(AccessCookie); ok {
		// Expired tokens still identify the session; skip claim validation
		// but keep signature verification.
		if claims, err := r.parseToken(cookie.Value, false); err == nil {
			if sid, err := id.ParseSessionID(claims.SessionID); err == nil {
				sessionID = sid
			}
		}
	}
	if sessionID.IsNil() {
		if cookie, ok := cookies.Get(RefreshCookie); ok {
			if sess, err := r.store.FindByRefreshToken(ctx, cookie.Value); err == nil {
				sessionID = sess.ID
			}
		}
	}

	if !sessionID.IsNil() {
		if err := r.store.Revoke(ctx, sessionID, now); err != nil {
			r.logger.WarnContext(ctx, "failed to revoke session",
				"request_id", requestcontext.RequestID(ctx),
				"session_id", sessionID,
				"error", err,
			)
		}
	}

	cookies.Clear(AccessCookie)
	cookies.Clear(RefreshCookie)
}

func (r *Resolver) lookupActive(ctx context.Context, claims *accessClaims, now time.Time) (*models.Identity, error) {
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, err
	}

	sess, err := r.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Active(now) || sess.UserID != userID {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &models.Identity{UserID: userID, SessionID: sessionID}, nil
}

func (r *Resolver) parseToken(token string, validateClaims bool) (*accessClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		return r.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (r *Resolver) mintAccessToken(sess *models.Session, now time.Time) (string, time.Time, error) {
	expiry := now.Add(r.accessTTL)
	if sess.ExpiresAt.Before(expiry) {
		expiry = sess.ExpiresAt
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		SessionID: sess.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	})
	signed, err := token.SignedString(r.signingKey)
	return signed, expiry, err
}

func isExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// deviceLabel derives a short "Browser on OS" label from the User-Agent.
func deviceLabel(ua string) string {
	if ua == "" {
		return ""
	}
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	os := parsed.OSInfo().Name
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	default:
		return os
	}
}
