package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/pkg/httpext"
	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/deepgram/shopfront/pkg/ratelimit"
)

func RateLimit(limitKey string) func(http.Handler) http.Handler {
	cfg := config.GetRateLimitConfig(limitKey)
	limiter := ratelimit.NewLimiter(cfg.Window, cfg.MaxHits)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !limiter.Allow(ip) {
				logger.Warn(logger.MIDDLEWARE, "Rate limit exceeded for %s on %s", ip, limitKey)
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(ip)))

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP uses the first X-Forwarded-For hop when behind a proxy, otherwise
// the remote address without its port.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
