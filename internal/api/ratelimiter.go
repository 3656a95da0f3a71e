package api

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// compareCost is the number of tokens a comparison consumes; it always runs
// the exhaustive search on top of the greedy one.
const compareCost = 5

type rateLimiter interface {
	AllowN(n int) bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst < compareCost {
		burst = compareCost
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) AllowN(n int) bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.AllowN(time.Now(), n)
}

func requestCost(r *http.Request) int {
	if r.Method == http.MethodPost && r.URL.Path == "/api/compare" {
		return compareCost
	}
	return 1
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.AllowN(requestCost(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(1))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
