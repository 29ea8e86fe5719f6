package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"curia/internal/platform/metrics"
	"curia/internal/platform/middleware"
	"curia/pkg/platform/httputil"
)

// Middleware throttles requests per client IP. A limit of zero disables it.
type Middleware struct {
	store   BucketStore
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) { mw.metrics = m }
}

func NewMiddleware(store BucketStore, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	mw := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(mw)
		}
	}
	if mw.limit <= 0 {
		logger.Info("rate limiting disabled")
	}
	return mw
}

// Limit is the chi middleware. A store error fails open: the portal keeps
// serving and logs the problem.
func (mw *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := middleware.GetClientIP(r.Context())
		if ip == "" {
			ip = middleware.ClientIPFromRequest(r)
		}

		allowed, err := mw.store.Allow(r.Context(), ip, mw.limit, mw.window)
		if err != nil {
			mw.logger.WarnContext(r.Context(), "rate limit check failed",
				"error", err,
				"request_id", middleware.GetRequestID(r.Context()),
			)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			if mw.metrics != nil {
				mw.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "60")
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limited",
				"error_description": "too many requests, slow down",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
