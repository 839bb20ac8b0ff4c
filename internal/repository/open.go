package repository

import (
	"context"
	"fmt"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/Rana718/seedforge/internal/database"
)

// Open builds the repository selected by cfg.Storage. The returned close
// function releases any connection it opened.
func Open(ctx context.Context, cfg *config.Config) (SchemaRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case "", "file":
		repo, err := NewFileRepository(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil

	case "sql":
		url, err := cfg.GetDatabaseURL()
		if err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, cfg.Database.Provider, url)
		if err != nil {
			return nil, nil, err
		}
		repo, err := NewSQLRepository(db, cfg.Database.Provider, cfg.Storage.Table)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := repo.EnsureTable(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil

	case "redis":
		url, err := cfg.GetRedisURL()
		if err != nil {
			return nil, nil, err
		}
		client, err := ConnectRedis(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisRepository(client, cfg.Storage.RedisKey), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
}
