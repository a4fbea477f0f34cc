package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vitrinezap/api/internal/platform/auth"
	"github.com/vitrinezap/api/internal/platform/httpx"
)

type rateLimiter interface {
	Allow(key string) bool
}

type simpleRateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time
	mu     sync.Mutex
	store  map[string]rateEntry
}

type rateEntry struct {
	count int
	reset time.Time
}

func newSimpleRateLimiter(limit int, window time.Duration, clock func() time.Time) rateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &simpleRateLimiter{
		limit:  limit,
		window: window,
		clock:  clock,
		store:  make(map[string]rateEntry),
	}
}

func (l *simpleRateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.store[key]
	if !ok || now.After(entry.reset) {
		l.store[key] = rateEntry{count: 1, reset: now.Add(l.window)}
		l.pruneExpiredLocked(now)
		return true
	}

	if entry.count >= l.limit {
		return false
	}
	entry.count++
	l.store[key] = entry
	return true
}

func (l *simpleRateLimiter) pruneExpiredLocked(now time.Time) {
	if len(l.store) == 0 {
		return
	}
	for key, entry := range l.store {
		if now.After(entry.reset) {
			delete(l.store, key)
		}
	}
}

// RateLimitMiddleware rejects requests over the per-key budget with 429.
// Authenticated requests are keyed by UID against authenticatedLimit; anonymous
// requests are keyed by client address against anonymousLimit. A non-positive
// authenticatedLimit reuses the anonymous budget.
func RateLimitMiddleware(anonymousLimit, authenticatedLimit int, window time.Duration) func(http.Handler) http.Handler {
	if authenticatedLimit <= 0 {
		authenticatedLimit = anonymousLimit
	}
	anonymous := newSimpleRateLimiter(anonymousLimit, window, time.Now)
	authenticated := newSimpleRateLimiter(authenticatedLimit, window, time.Now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := anonymous
			key := r.RemoteAddr
			if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity != nil && strings.TrimSpace(identity.UID) != "" {
				limiter = authenticated
				key = identity.UID
			} else if credential := strings.TrimSpace(r.Header.Get("Authorization")); credential != "" {
				// Token verification runs per route group, after this
				// middleware; the raw credential stands in for the UID.
				limiter = authenticated
				key = credential
			}
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(key) {
				httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many requests", http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
