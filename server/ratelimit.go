package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 5 * time.Minute

// rateLimiter keeps one token bucket per session.
type rateLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	requests    int
	window      time.Duration
	mu          sync.Mutex
	lastCleanup time.Time
}

// newRateLimiter allows requests per window with the whole allowance available as a burst.
// A non-positive request count or window disables limiting.
func newRateLimiter(requests int, window time.Duration) *rateLimiter {
	if requests <= 0 || window <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:       rate.Every(window / time.Duration(requests)),
		burst:       requests,
		requests:    requests,
		window:      window,
		lastCleanup: time.Now(),
	}
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.limit, rl.burst))
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, i.e. idle clients.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < limiterCleanupInterval {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// allowRefresh takes a token from the bucket of the session being refreshed. When the
// bucket is empty it answers 429 with Retry-After and returns false.
func (s *Server) allowRefresh(w http.ResponseWriter, r *http.Request, key string) bool {
	if s.limiter == nil {
		return true
	}

	limiter := s.limiter.getLimiter(key)
	if limiter.Allow() {
		return true
	}

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel() // only used to compute Retry-After

	retryAfter := max(int(delay.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.requests))
	w.Header().Set("X-RateLimit-Window", s.limiter.window.String())

	zerolog.Ctx(r.Context()).Warn().
		Str("key", key).
		Str("path", r.URL.Path).
		Int("retry_after", retryAfter).
		Msg("rate limit exceeded")
	s.metrics.RateLimited()

	writeJSON(w, http.StatusTooManyRequests, api.MessageResponse{Message: api.MessageTooManyRequests})
	return false
}
