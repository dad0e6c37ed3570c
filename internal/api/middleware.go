package api

import (
	"context"
	"log"
	"net/http"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/auth"
)

// RequestLimiter is the burst limiter contract; *ratelimit.Limiter
// satisfies it.
type RequestLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// CORS answers preflight requests permissively. The app is served from
// a separate origin and the deployment accepts the open policy.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit applies per-user burst protection. Limiter errors fail
// open: a Redis outage must not block the product.
func RateLimit(limiter RequestLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := auth.GetUserID(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), userID)
			if err != nil {
				log.Printf("ratelimit: error, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
