package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Khateeb-Urrahman/ListTube/internal/config"
)

// Open connects the collection selected by cfg.Driver. The returned func
// releases it.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Collection, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemory(), func() {}, nil

	case config.DriverBolt:
		b, err := OpenBolt(cfg.BoltPath, cfg.BoltTimeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using bolt store", "path", cfg.BoltPath)
		return b, func() {
			if err := b.Close(); err != nil {
				logger.Error("close bolt store", "error", err)
			}
		}, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pg: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pg ping: %w", err)
		}
		pg := NewPostgres(pool, logger)
		if err := pg.AutoMigrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("using postgres store")
		return pg, pool.Close, nil

	case config.DriverMongo:
		m, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using mongo store", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		return m, func() {
			if err := m.Close(context.Background()); err != nil {
				logger.Error("close mongo store", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
