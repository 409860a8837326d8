package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/Khateeb-Urrahman/ListTube/internal/config"
	"github.com/Khateeb-Urrahman/ListTube/internal/docstore"
	"github.com/Khateeb-Urrahman/ListTube/internal/identity"
	"github.com/Khateeb-Urrahman/ListTube/internal/logging"
	"github.com/Khateeb-Urrahman/ListTube/internal/playlist"
	"github.com/Khateeb-Urrahman/ListTube/internal/search"
	"github.com/Khateeb-Urrahman/ListTube/internal/session"
)

var errNotLoggedIn = errors.New("not logged in; run `listtube login --token <token>`")

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	loader     *config.Loader
	config     *config.Config
	configErr  error

	closers []func()
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.loader = config.NewLoader(path)
		c.config, c.configErr = c.loader.Load()
	})
	return c.config, c.configErr
}

func (c *commandContext) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, discardCloser(closer))
	return logger, nil
}

func (c *commandContext) issuer() (*identity.Issuer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required to verify session tokens")
	}
	return identity.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL), nil
}

// lookup builds the media lookup: YouTube when an API key is configured,
// the built-in catalog otherwise, cached in Redis when a URL is set.
func (c *commandContext) lookup(ctx context.Context, logger *slog.Logger) (search.Lookup, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	var videos search.VideoSource
	if cfg.YouTube.APIKey != "" {
		yt, err := search.NewYouTube(ctx, cfg.YouTube.APIKey, cfg.YouTube.Endpoint, cfg.YouTube.Timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("youtube client: %w", err)
		}
		videos = yt
	}
	var lookup search.Lookup = search.NewService(nil, videos, logger)

	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		lookup = search.NewCached(lookup, rdb, cfg.Redis.SearchTTL, logger)
	}
	return lookup, nil
}

// openSession wires a Session to the configured store and restores the
// saved sign-in, if any.
func (c *commandContext) openSession(ctx context.Context) (*session.Session, *identity.Local, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}

	coll, closeStore, err := docstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	c.closers = append(c.closers, closeStore)

	lookup, err := c.lookup(ctx, logger)
	if err != nil {
		return nil, nil, err
	}

	provider, err := c.restoreIdentity(ctx, cfg.Session.Token, logger)
	if err != nil {
		return nil, nil, err
	}

	store := playlist.NewStore(coll, provider, logger)
	sess := session.New(store, lookup, logger)
	if err := sess.HandleIdentity(ctx, identity.State{User: provider.Current()}); err != nil {
		return nil, nil, err
	}
	return sess, provider, nil
}

// restoreIdentity signs in with the saved token. A refresh token is
// exchanged for a fresh access token first. A missing or rejected token
// leaves the provider signed out.
func (c *commandContext) restoreIdentity(ctx context.Context, token string, logger *slog.Logger) (*identity.Local, error) {
	if token == "" {
		provider := identity.NewLocal(nil, logger)
		provider.Resolve(nil)
		return provider, nil
	}

	issuer, err := c.issuer()
	if err != nil {
		return nil, err
	}
	access := token
	if claims, err := issuer.Verify(token); err == nil && claims.TokenType == identity.TokenTypeRefresh {
		tokens, err := issuer.Refresh(token)
		if err != nil {
			return nil, err
		}
		access = tokens.AccessToken
	}

	provider := identity.NewLocal(identity.NewTokenAuthenticator(issuer, access), logger)
	if err := provider.SignIn(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		logger.Warn("saved session rejected", "error", err)
		provider.Resolve(nil)
	}
	return provider, nil
}

// withSession opens a session for the duration of fn.
func (c *commandContext) withSession(ctx context.Context, fn func(sess *session.Session, provider *identity.Local) error) error {
	defer c.close()
	sess, provider, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	return fn(sess, provider)
}

// requireUser fails when the session has nobody signed in.
func requireUser(sess *session.Session) error {
	if sess.Snapshot().User == nil {
		return errNotLoggedIn
	}
	return nil
}

// messageError turns the session's user-facing message into an error when
// an operation did not go through.
func messageError(sess *session.Session, res playlist.Result, err error) error {
	if err != nil {
		if msg := sess.Snapshot().Message; msg != "" {
			return errors.New(msg)
		}
		return err
	}
	if res.Outcome == playlist.Denied || res.Outcome == playlist.Failed {
		msg := sess.Snapshot().Message
		if msg == "" {
			msg = res.String()
		}
		return errors.New(msg)
	}
	return nil
}

func discardCloser(c io.Closer) func() {
	return func() { _ = c.Close() }
}
