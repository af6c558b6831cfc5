package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soko/internal/access"
	"soko/internal/gate"
	"soko/internal/locale"
	"soko/internal/session"
	"soko/internal/session/models"
	"soko/internal/userctx"
	id "soko/pkg/domain"
)

type staticResolver struct {
	identity *models.Identity
}

func (s *staticResolver) Resolve(context.Context, *session.CookieSync) *models.Identity {
	return s.identity
}

func (s *staticResolver) Terminate(context.Context, *session.CookieSync) {}

type staticProvider struct {
	user *userctx.UserContext
}

func (s *staticProvider) Lookup(context.Context, id.UserID) (*userctx.UserContext, error) {
	return s.user, nil
}

type staticHealth struct {
	err error
}

func (s staticHealth) Health(context.Context) error { return s.err }

func newTestRouter(t *testing.T, redis, postgres HealthChecker) http.Handler {
	t.Helper()

	locales, err := locale.New([]string{"en", "sw"})
	require.NoError(t, err)

	engine := gate.New(
		locales,
		gate.DefaultPolicy(access.DefaultTable(), access.DefaultLandingTable()),
		&staticResolver{},
		&staticProvider{},
		nil,
		nil,
		slog.New(slog.DiscardHandler),
	)

	app := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return NewRouter(Deps{
		Gate:     engine,
		App:      app,
		Logger:   slog.New(slog.DiscardHandler),
		Redis:    redis,
		Postgres: postgres,
	})
}

func TestRouter_HealthEndpointSkipsGate(t *testing.T) {
	router := newTestRouter(t, staticHealth{}, staticHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_HealthReportsDegradedDependency(t *testing.T) {
	router := newTestRouter(t, staticHealth{err: errors.New("connection refused")}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"unavailable"`)
}

func TestRouter_MetricsExposed(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ClientRewriteMarkerDoesNotBypassGate(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	// An anonymous client forging the internal rewrite marker must still
	// face the full precedence chain, not a free pass to protected pages.
	req := httptest.NewRequest(http.MethodGet, "/en/command-center", nil)
	req.Header.Set(gate.RewriteHeader, "1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/en/login", rec.Header().Get("Location"))
}

func TestRouter_PageRoutesPassThroughGate(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	// Anonymous request without a locale segment: the gate answers with a
	// locale redirect before the app handler is reached.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pos", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/en/pos", rec.Header().Get("Location"))
}
