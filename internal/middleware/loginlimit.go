package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brightwash/catalog-server/internal/audit"
	apperrors "github.com/brightwash/catalog-server/internal/errors"
	"github.com/brightwash/catalog-server/internal/service"
)

// LoginRateLimiter throttles login attempts per client IP.
type LoginRateLimiter struct {
	limiter service.AttemptLimiter
	now     func() time.Time
}

func NewLoginRateLimiter(limiter service.AttemptLimiter) *LoginRateLimiter {
	return &LoginRateLimiter{limiter: limiter, now: time.Now}
}

func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := audit.ClientIP(r)

		allowed, resetAt := l.limiter.Allow(r.Context(), ip)
		if !allowed {
			retryAfter := int(resetAt.Sub(l.now()).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}
