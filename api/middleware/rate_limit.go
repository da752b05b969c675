package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/staymate-io/staymate-backend/api/responses"
	pkgerrors "github.com/staymate-io/staymate-backend/pkg/errors"
)

const (
	rateLimitPerSecond = 20
	rateLimitBurst     = 40
	limiterIdleTTL     = 10 * time.Minute
)

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
}

// RateLimit applies a per-user token bucket to authenticated routes.
// Unauthenticated requests fall back to a shared per-IP bucket.
func RateLimit() func(http.Handler) http.Handler {
	rl := &rateLimiter{limiters: make(map[string]*userLimiter)}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserIDFromContext(r.Context())
			if key == "" {
				key = "ip:" + r.RemoteAddr
			}
			if !rl.allow(key) {
				responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &userLimiter{limiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now

	if len(rl.limiters) > 1024 {
		for k, v := range rl.limiters {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.limiters, k)
			}
		}
	}

	return entry.limiter.Allow()
}
