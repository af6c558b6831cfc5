package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	platformhttp "soko/pkg/platform/httputil"
	"soko/pkg/requestcontext"
)

// NewAppHandler returns the handler gated requests are served by: a reverse
// proxy to the upstream application when one is configured, otherwise a stub
// page handler for local development.
//
// The proxy forwards the gate's resolved identity and locale as headers so
// the upstream never re-derives them.
func NewAppHandler(upstream string, logger *slog.Logger) (http.Handler, error) {
	if upstream == "" {
		return http.HandlerFunc(servePageStub), nil
	}

	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		ctx := r.Context()
		r.Header.Set("X-Soko-Locale", requestcontext.Locale(ctx).String())
		r.Header.Set("X-Soko-Request-Id", requestcontext.RequestID(ctx))
		if userID := requestcontext.UserID(ctx); !userID.IsNil() {
			r.Header.Set("X-Soko-User-Id", userID.String())
			r.Header.Set("X-Soko-Session-Id", requestcontext.SessionID(ctx).String())
		} else {
			r.Header.Del("X-Soko-User-Id")
			r.Header.Del("X-Soko-Session-Id")
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.ErrorContext(r.Context(), "upstream proxy failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy, nil
}

func servePageStub(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	platformhttp.WriteJSON(w, http.StatusOK, map[string]string{
		"path":   r.URL.Path,
		"locale": requestcontext.Locale(ctx).String(),
	})
}
