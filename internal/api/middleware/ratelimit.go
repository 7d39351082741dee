package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/eventmanager/server/internal/config"
)

// LoginRateLimiter throttles credential endpoints per client IP. The bucket
// holds cfg.LoginPer15Minutes tokens and refills one token every
// window/limit, so a client gets at most that many attempts per window.
// A limit of zero disables throttling entirely, including the cleanup
// goroutine. Call Stop on shutdown to end that goroutine.
type LoginRateLimiter struct {
	store *limiterStore
}

func NewLoginRateLimiter(cfg config.RateLimitConfig) *LoginRateLimiter {
	return &LoginRateLimiter{store: newLimiterStore(cfg.LoginPer15Minutes, 15*time.Minute)}
}

func (l *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.store.limiter(clientKey(r))
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		if !limiter.Allow() {
			w.Header().Set("Retry-After", retryAfterSeconds(l.store.refill))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop ends the cleanup goroutine. Safe to call when limiting is disabled.
func (l *LoginRateLimiter) Stop() {
	l.store.stopCleanup()
}

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    int
	refill   time.Duration
	stop     chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(limit int, window time.Duration) *limiterStore {
	store := &limiterStore{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
	}
	if limit <= 0 {
		return store
	}
	store.refill = window / time.Duration(limit)
	store.stop = make(chan struct{})

	// Entries for clients not seen within the window are dropped so the map
	// cannot grow without bound.
	go store.cleanupLoop()

	return store
}

func (s *limiterStore) limiter(key string) *rate.Limiter {
	if s.limit <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.limiters[key]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:  rate.NewLimiter(rate.Every(s.refill), s.limit),
		lastSeen: time.Now(),
	}
	s.limiters[key] = entry
	return entry.limiter
}

func (s *limiterStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *limiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.limiters {
		if now.Sub(entry.lastSeen) > 15*time.Minute {
			delete(s.limiters, key)
		}
	}
}

func (s *limiterStore) stopCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func retryAfterSeconds(refill time.Duration) string {
	seconds := int(refill / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

// clientKey identifies the caller by connection address. Forwarding headers
// are deliberately ignored; they are trivially spoofed without a trusted
// proxy in front.
func clientKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
