package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Khateeb-Urrahman/ListTube/internal/config"
	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
	"github.com/Khateeb-Urrahman/ListTube/internal/search"
)

type routerDeps struct {
	cfg     config.HTTPConfig
	logger  *slog.Logger
	issuer  *identity.Issuer
	store   *playlist.Store
	lookup  search.Lookup
	google  *identity.Google
	redis   *redis.Client // optional
	limiter *createLimiter
}

func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(corsMiddleware(d.cfg.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogMiddleware(d.logger))
	r.Use(middleware.Recoverer)
	if d.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.cfg.RequestTimeout))
	}
	if d.cfg.MaxBodyBytes > 0 {
		r.Use(bodySizeLimitMiddleware(d.cfg.MaxBodyBytes))
	}
	r.Use(identity.Middleware(d.issuer))

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		deps := map[string]string{}
		if d.redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.redis.Ping(ctx).Err(); err != nil {
				d.logger.Warn("redis ping", "error", err)
				deps["redis"] = "down"
				status, code = "degraded", http.StatusServiceUnavailable
			} else {
				deps["redis"] = "ok"
			}
		}
		writeJSON(w, code, map[string]any{
			"status": status,
			"deps":   deps,
		})
	})

	r.Handle("/search", search.NewServer(d.lookup, d.logger).Router())
	r.Handle("/auth/*", d.google.Router())

	var mws []func(http.Handler) http.Handler
	if d.limiter != nil {
		mws = append(mws, d.limiter.Middleware)
	}
	r.Mount("/", playlist.NewServer(d.store, d.logger).Router(mws...))

	return r
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
