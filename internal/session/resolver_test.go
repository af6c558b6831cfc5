package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"soko/internal/session/models"
	"soko/internal/session/store"
	id "soko/pkg/domain"
	"soko/pkg/requestcontext"
)

const testSigningKey = "resolver-test-signing-key"

type ResolverSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	resolver *Resolver
	now      time.Time
}

func (s *ResolverSuite) SetupTest() {
	s.store = store.NewMemory()
	s.resolver = NewResolver(s.store, testSigningKey, 15*time.Minute, slog.New(slog.DiscardHandler))
	s.now = time.Now().Truncate(time.Second)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *ResolverSuite) createSession() *models.Session {
	sess := &models.Session{
		ID:           id.SessionID(uuid.New()),
		UserID:       id.UserID(uuid.New()),
		RefreshToken: uuid.NewString(),
		Status:       models.StatusActive,
		CreatedAt:    s.now.Add(-time.Hour),
		ExpiresAt:    s.now.Add(24 * time.Hour),
		LastSeenAt:   s.now.Add(-time.Hour),
	}
	s.Require().NoError(s.store.Create(context.Background(), sess))
	return sess
}

func (s *ResolverSuite) newSync(cookies ...*http.Cookie) (*CookieSync, *httptest.ResponseRecorder, *http.Request) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/en/pos", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return NewCookieSync(w, r), w, r
}

func (s *ResolverSuite) TestResolve() {
	s.Run("valid access cookie yields identity", func() {
		sess := s.createSession()
		token, expiry, err := s.resolver.mintAccessToken(sess, s.now)
		s.Require().NoError(err)
		s.True(expiry.After(s.now))

		sync, w, _ := s.newSync(&http.Cookie{Name: AccessCookie, Value: token})
		ident := s.resolver.Resolve(s.ctx(), sync)

		s.Require().NotNil(ident)
		s.Equal(sess.UserID, ident.UserID)
		s.Equal(sess.ID, ident.SessionID)
		s.Empty(w.Result().Cookies(), "no rewrite needed for a valid cookie")
	})

	s.Run("no cookies is a normal anonymous outcome", func() {
		sync, w, _ := s.newSync()
		ident := s.resolver.Resolve(s.ctx(), sync)

		s.Nil(ident)
		s.Empty(w.Result().Cookies())
	})

	s.Run("expired access cookie is refreshed and rewritten both ways", func() {
		sess := s.createSession()
		staleIssue := s.now.Add(-2 * time.Hour)
		expired, _, err := s.resolver.mintAccessToken(sess, staleIssue)
		s.Require().NoError(err)

		sync, w, r := s.newSync(
			&http.Cookie{Name: AccessCookie, Value: expired},
			&http.Cookie{Name: RefreshCookie, Value: sess.RefreshToken},
		)
		ident := s.resolver.Resolve(s.ctx(), sync)

		s.Require().NotNil(ident)
		s.Equal(sess.UserID, ident.UserID)

		// Outbound response carries the fresh cookie.
		var rewritten string
		for _, c := range w.Result().Cookies() {
			if c.Name == AccessCookie {
				rewritten = c.Value
			}
		}
		s.Require().NotEmpty(rewritten)
		s.NotEqual(expired, rewritten)

		// Inbound request was rewritten for downstream reads.
		inbound, err := r.Cookie(AccessCookie)
		s.Require().NoError(err)
		s.Equal(rewritten, inbound.Value)

		// Session bookkeeping advanced.
		updated, err := s.store.FindByID(context.Background(), sess.ID)
		s.Require().NoError(err)
		s.Equal(s.now, updated.LastSeenAt)
	})

	s.Run("refresh records device metadata from client context", func() {
		sess := s.createSession()
		sync, _, _ := s.newSync(&http.Cookie{Name: RefreshCookie, Value: sess.RefreshToken})

		const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		ctx := requestcontext.WithClientMetadata(s.ctx(), "203.0.113.9", chromeUA)
		ident := s.resolver.Resolve(ctx, sync)
		s.Require().NotNil(ident)

		updated, err := s.store.FindByID(context.Background(), sess.ID)
		s.Require().NoError(err)
		s.Equal("Chrome on Linux", updated.Device)
		s.Equal("203.0.113.9", updated.IPAddress)
	})

	s.Run("revoked session cannot refresh and cookies are cleared", func() {
		sess := s.createSession()
		s.Require().NoError(s.store.Revoke(context.Background(), sess.ID, s.now))

		sync, w, _ := s.newSync(&http.Cookie{Name: RefreshCookie, Value: sess.RefreshToken})
		ident := s.resolver.Resolve(s.ctx(), sync)

		s.Nil(ident)
		cleared := map[string]bool{}
		for _, c := range w.Result().Cookies() {
			if c.MaxAge < 0 {
				cleared[c.Name] = true
			}
		}
		s.True(cleared[AccessCookie])
		s.True(cleared[RefreshCookie])
	})

	s.Run("garbage access cookie resolves anonymous", func() {
		sync, _, _ := s.newSync(&http.Cookie{Name: AccessCookie, Value: "not-a-jwt"})
		ident := s.resolver.Resolve(s.ctx(), sync)
		s.Nil(ident)
	})

	s.Run("access cookie signed with another key resolves anonymous", func() {
		sess := s.createSession()
		other := NewResolver(s.store, "different-key", 15*time.Minute, slog.New(slog.DiscardHandler))
		token, _, err := other.mintAccessToken(sess, s.now)
		s.Require().NoError(err)

		sync, _, _ := s.newSync(&http.Cookie{Name: AccessCookie, Value: token})
		ident := s.resolver.Resolve(s.ctx(), sync)
		s.Nil(ident)
	})
}

func (s *ResolverSuite) TestTerminate() {
	s.Run("revokes the session and clears both cookies", func() {
		sess := s.createSession()
		token, _, err := s.resolver.mintAccessToken(sess, s.now)
		s.Require().NoError(err)

		sync, w, _ := s.newSync(
			&http.Cookie{Name: AccessCookie, Value: token},
			&http.Cookie{Name: RefreshCookie, Value: sess.RefreshToken},
		)
		s.resolver.Terminate(s.ctx(), sync)

		stored, err := s.store.FindByID(context.Background(), sess.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRevoked, stored.Status)

		cleared := 0
		for _, c := range w.Result().Cookies() {
			if c.MaxAge < 0 {
				cleared++
			}
		}
		s.Equal(2, cleared)
	})

	s.Run("expired access cookie still identifies the session to revoke", func() {
		sess := s.createSession()
		expired, _, err := s.resolver.mintAccessToken(sess, s.now.Add(-2*time.Hour))
		s.Require().NoError(err)

		sync, _, _ := s.newSync(&http.Cookie{Name: AccessCookie, Value: expired})
		s.resolver.Terminate(s.ctx(), sync)

		stored, err := s.store.FindByID(context.Background(), sess.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRevoked, stored.Status)
	})

	s.Run("terminating with no session just clears cookies", func() {
		sync, w, _ := s.newSync()
		s.resolver.Terminate(s.ctx(), sync)
		s.Len(w.Result().Cookies(), 2)
	})
}
