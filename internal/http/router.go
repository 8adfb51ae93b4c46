// Package httpapi assembles the HTTP surface: middleware chain, public and
// authenticated route groups, health, and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	placehandler "playfinder/internal/place/handler"
	"playfinder/internal/platform/metrics"
	"playfinder/internal/platform/middleware"
	searchhandler "playfinder/internal/search/handler"
	userhandler "playfinder/internal/user/handler"
	"playfinder/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// HealthFunc reports per-component health, keyed by component name.
type HealthFunc func(ctx context.Context) map[string]string

// Deps carries everything the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Auth    middleware.TokenValidator
	Search  *searchhandler.Handler
	Places  *placehandler.Handler
	Users   *userhandler.Handler
	Health  HealthFunc
}

// NewRouter builds the full route tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	if d.Metrics != nil {
		r.Use(middleware.Latency(d.Metrics))
	}

	r.Get("/healthz", handleHealth(d.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			d.Search.Register(public)
			d.Places.RegisterPublic(public)
			d.Users.RegisterPublic(public)
		})
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(d.Auth, d.Logger))
			d.Places.RegisterProtected(protected)
			d.Users.RegisterProtected(protected)
		})
	})

	return r
}

func handleHealth(health HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		status := http.StatusOK

		if health != nil {
			components := health(r.Context())
			body["components"] = components
			for _, state := range components {
				if state != "ok" {
					body["status"] = "degraded"
					status = http.StatusServiceUnavailable
					break
				}
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
