// Package httptransport assembles the portal's HTTP surface: middleware
// chain, domain handler mounts and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"curia/internal/admin"
	electionhandler "curia/internal/election/handler"
	"curia/internal/platform/metrics"
	"curia/internal/platform/middleware"
	"curia/internal/ratelimit"
	submissionhandler "curia/internal/submission/handler"
)

// Deps carries everything the router mounts. Admin and RateLimit are
// optional; nil leaves the surface out.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Election       *electionhandler.Handler
	Submissions    *submissionhandler.Handler
	Admin          *admin.Handler
	TokenValidator middleware.TokenValidator
	RateLimit      *ratelimit.Middleware
}

// NewRouter wires the middleware chain and mounts all handlers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	deps.Election.Register(r)

	if deps.RateLimit != nil {
		r.Group(func(gr chi.Router) {
			gr.Use(deps.RateLimit.Limit)
			deps.Submissions.Register(gr)
		})
	} else {
		deps.Submissions.Register(r)
	}

	if deps.Admin != nil {
		deps.Admin.Register(r, deps.TokenValidator)
	}

	return r
}
