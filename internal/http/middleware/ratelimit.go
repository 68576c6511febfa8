package middleware

import (
	"net/http"
	"time"

	"github.com/cris-tech/gestao-api/internal/config"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RateLimit returns an IP-based rate limiting middleware. Whitelisted
// paths (health probes) bypass the limiter entirely.
func RateLimit(cfg *config.RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	whitelist := make(map[string]bool, len(cfg.WhitelistPaths))
	for _, path := range cfg.WhitelistPaths {
		whitelist[path] = true
	}

	limiter := httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("Rate limit exceeded",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"rate_limited","title":"Too many requests","status":429}`))
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if whitelist[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
