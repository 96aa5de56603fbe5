package service

import (
	"context"
	"fmt"

	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/internal/config"
	"github.com/okian/fulfillment/internal/seed"
	"github.com/okian/fulfillment/pkg/logger"
)

// OpenStore opens the document store selected by cfg and applies the seed
// fixture when one is configured.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	var store repository.Store
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		s, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		store = s
	default:
		store = repository.NewMemStore()
	}
	log.Info(ctx, "document store opened", logger.String("driver", cfg.StoreDriver))

	if cfg.SeedFile == "" {
		return store, nil
	}
	fixture, err := seed.Load(cfg.SeedFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	sum, err := fixture.Apply(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info(ctx, "store seeded",
		logger.String("file", cfg.SeedFile),
		logger.Int("players", sum.Players),
		logger.Int("tournaments", sum.Tournaments),
		logger.Int("matches", sum.Matches))
	return store, nil
}

// FromConfig builds a Service over store using the settings in cfg.
func FromConfig(cfg *config.Config, store repository.Store, log logger.Logger) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return New(
		WithLogger(log),
		WithStore(store),
		WithLookupMode(cfg.LookupMode),
		WithDuplicatePolicy(cfg.DuplicatePolicy),
		WithContextLifespan(cfg.ContextLifespan),
		WithFanoutLimit(cfg.FanoutLimit),
		WithReplaySize(cfg.ReplaySize),
		WithLocation(loc),
	), nil
}
