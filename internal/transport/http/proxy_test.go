package httptransport

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	id "soko/pkg/domain"
	"soko/pkg/requestcontext"
)

func TestAppHandler_ProxyForwardsIdentityHeaders(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	handler, err := NewAppHandler(upstream.URL, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	userID := id.UserID(uuid.New())
	sessionID := id.SessionID(uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/en/pos", nil)
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	ctx = requestcontext.WithLocale(ctx, language.English)
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	// A client must not be able to smuggle its own identity header past
	// the proxy.
	req.Header.Set("X-Soko-User-Id", "spoofed")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), got.Get("X-Soko-User-Id"))
	assert.Equal(t, sessionID.String(), got.Get("X-Soko-Session-Id"))
	assert.Equal(t, "en", got.Get("X-Soko-Locale"))
	assert.Equal(t, "req-123", got.Get("X-Soko-Request-Id"))
}

func TestAppHandler_ProxyStripsIdentityForAnonymous(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	t.Cleanup(upstream.Close)

	handler, err := NewAppHandler(upstream.URL, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/en/login", nil)
	req.Header.Set("X-Soko-User-Id", "spoofed")
	ctx := requestcontext.WithLocale(req.Context(), language.Swahili)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	assert.Empty(t, got.Get("X-Soko-User-Id"))
	assert.Empty(t, got.Get("X-Soko-Session-Id"))
	assert.Equal(t, "sw", got.Get("X-Soko-Locale"))
}

func TestAppHandler_StubWithoutUpstream(t *testing.T) {
	handler, err := NewAppHandler("", slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/en/pos", nil)
	ctx := requestcontext.WithLocale(req.Context(), language.English)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"locale":"en"`)
}

func TestAppHandler_RejectsBadUpstream(t *testing.T) {
	_, err := NewAppHandler("://not-a-url", slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
