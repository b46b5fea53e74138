package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type clientState struct {
	windowStart  time.Time
	requestCount int
}

// RateLimiter allows each client IP a fixed number of requests per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientState
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientState),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow counts one request from ip and reports whether it is within limit.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.clients[ip]
	if !ok || now.Sub(state.windowStart) >= l.window {
		state = &clientState{windowStart: now}
		l.clients[ip] = state
	}
	state.requestCount++
	return state.requestCount <= l.limit
}

// Middleware rejects clients over their limit with 429. Health checks and
// static assets are not counted.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.Allow(ip) {
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeJSONError(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente mais tarde")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Cleanup drops idle clients every window until ctx is done.
func (l *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

func (l *RateLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, state := range l.clients {
		if now.Sub(state.windowStart) > 2*l.window {
			delete(l.clients, ip)
		}
	}
}
