// Package httptransport assembles the HTTP surface: platform middleware,
// health and metrics endpoints, and the gated application routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soko/internal/gate"
	"soko/pkg/platform/httputil"
	"soko/pkg/platform/middleware/metadata"
	"soko/pkg/platform/middleware/request"
	"soko/pkg/platform/middleware/requesttime"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps are the router's wiring inputs. Health checkers may be nil when the
// corresponding backend is not configured.
type Deps struct {
	Gate   *gate.Gate
	App    http.Handler
	Logger *slog.Logger

	Redis    HealthChecker
	Postgres HealthChecker
}

// NewRouter builds the full middleware chain and route table. Every page
// route passes through the gate; health and metrics do not.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(stripRewriteMarker)
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(deps.Gate.Middleware)
		r.Handle("/*", deps.App)
	})

	return r
}

// stripRewriteMarker drops the internal rewrite marker from inbound
// requests. Only handlers inside this process may set it; a client-supplied
// value would skip gate evaluation entirely on any protected path.
func stripRewriteMarker(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(gate.RewriteHeader)
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleHealth(deps Deps) http.HandlerFunc {
	checks := map[string]HealthChecker{}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	if deps.Postgres != nil {
		checks["postgres"] = deps.Postgres
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK

		for name, checker := range checks {
			if err := checker.Health(ctx); err != nil {
				deps.Logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, resp)
	}
}
