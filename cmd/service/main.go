package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Khateeb-Urrahman/ListTube/internal/config"
	"github.com/Khateeb-Urrahman/ListTube/internal/docstore"
	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/logging"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
	"github.com/Khateeb-Urrahman/ListTube/internal/search"
)

func main() {
	cfg, err := config.NewLoader(os.Getenv("LISTTUBE_CONFIG")).Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("listtube: auth.jwt_secret is empty, cannot start without JWT validation")
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coll, closeStore, err := docstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var videos search.VideoSource
	if cfg.YouTube.APIKey != "" {
		yt, err := search.NewYouTube(ctx, cfg.YouTube.APIKey, cfg.YouTube.Endpoint, cfg.YouTube.Timeout, logger)
		if err != nil {
			logger.Error("youtube client", "error", err)
			os.Exit(1)
		}
		videos = yt
	} else {
		logger.Info("youtube api key not set, using the offline catalog")
	}
	var lookup search.Lookup = search.NewService(nil, videos, logger)

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("redis url", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
		lookup = search.NewCached(lookup, rdb, cfg.Redis.SearchTTL, logger)
	}

	issuer := identity.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	google := identity.NewGoogle(identity.GoogleConfig{
		ClientID:     cfg.Auth.GoogleClientID,
		ClientSecret: cfg.Auth.GoogleClientSecret,
		RedirectURL:  cfg.Auth.GoogleRedirectURL,
	}, issuer, logger)

	r := setupRouter(routerDeps{
		cfg:     cfg.HTTP,
		logger:  logger,
		issuer:  issuer,
		store:   playlist.NewStore(coll, nil, logger),
		lookup:  lookup,
		google:  google,
		redis:   rdb,
		limiter: newCreateLimiter(5 * time.Second),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("listtube listening", "addr", cfg.HTTP.Addr, "store", cfg.Store.Driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}
}
