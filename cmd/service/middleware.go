package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
)

func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")

			if strings.ToUpper(r.Method) == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bodySizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > 0 && r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("req",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// createLimiter allows one playlist creation per user per window.
type createLimiter struct {
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	lastSeen  map[string]time.Time
	lastSweep time.Time
}

func newCreateLimiter(window time.Duration) *createLimiter {
	return &createLimiter{
		window:   window,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

func (l *createLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/playlists" {
			next.ServeHTTP(w, r)
			return
		}
		user := identity.FromRequest(r)
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		now := l.now()
		l.mu.Lock()
		l.sweep(now)
		last, ok := l.lastSeen[user.UID]
		if ok && now.Sub(last) < l.window {
			l.mu.Unlock()
			retry := l.window - now.Sub(last)
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "too many playlist creations")
			return
		}
		l.lastSeen[user.UID] = now
		l.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// sweep drops users whose window has passed. It runs at most once per window.
// Callers hold l.mu.
func (l *createLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for uid, last := range l.lastSeen {
		if now.Sub(last) >= l.window {
			delete(l.lastSeen, uid)
		}
	}
	l.lastSweep = now
}

func (l *createLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastSeen)
}
