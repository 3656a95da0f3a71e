package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
	costs []int
}

func (s *staticLimiter) AllowN(n int) bool {
	s.costs = append(s.costs, n)
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestRateLimitMiddlewareChargesComparisonsMore(t *testing.T) {
	limiter := &staticLimiter{allow: true}
	middleware := rateLimitMiddleware(limiter, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	middleware.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/plan", nil))
	middleware.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/compare", nil))

	if len(limiter.costs) != 2 || limiter.costs[0] != 1 || limiter.costs[1] != compareCost {
		t.Fatalf("unexpected costs charged: %v", limiter.costs)
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if !limiter.AllowN(compareCost) {
		t.Fatalf("expected a comparison to fit in the minimum burst")
	}
}
