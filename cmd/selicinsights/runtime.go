package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/selicinsights/internal/breakers"
	"github.com/sawpanic/selicinsights/internal/cache"
	"github.com/sawpanic/selicinsights/internal/config"
	"github.com/sawpanic/selicinsights/internal/infrastructure/db"
	"github.com/sawpanic/selicinsights/internal/secrets"
	"github.com/sawpanic/selicinsights/internal/source"
)

// runtime owns the data source and the connections behind it.
type runtime struct {
	source source.Source
	db     *db.Manager
	cache  cache.Cache
}

// openRuntime builds the configured source. The database is opened whenever
// it is enabled so /health can report on it, even if another source serves
// the data.
func openRuntime(ctx context.Context, cfg config.Config, onBreaker func(name, from, to string)) (*runtime, error) {
	mgr, err := db.NewManager(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %s", secrets.Redact(err.Error()))
	}
	if mgr.IsEnabled() {
		log.Info().Str("dsn", secrets.Redact(cfg.Database.DSN)).Msg("Database connected")
	}
	rt := &runtime{db: mgr}

	switch cfg.Source.Kind {
	case source.KindEmbedded:
		rt.source = source.Embedded{}

	case source.KindFile:
		f, err := source.NewFile(cfg.Source.File)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.source = f

	case source.KindPostgres:
		if err := mgr.Migrate(ctx); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		rt.cache = cache.New(cfg.Cache)
		if cfg.Cache.RedisAddr != "" {
			log.Info().Str("addr", secrets.Redact(cfg.Cache.RedisAddr)).Msg("Using Redis dataset cache")
		}
		b := breakers.New("dataset", cfg.Breaker, onBreaker)
		rt.source = source.NewRepository(mgr.Repository().Series, b, rt.cache, cfg.Cache.TTL)

	default:
		rt.Close()
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	log.Info().Str("source", rt.source.Name()).Bool("database", mgr.IsEnabled()).Msg("Data source ready")
	return rt, nil
}

func (rt *runtime) Close() {
	if c, ok := rt.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close cache")
		}
	}
	if err := rt.db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}
}
