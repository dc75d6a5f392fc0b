package storage

import (
	"context"
	"fmt"

	"cropsense/internal/config"
	"cropsense/internal/database"

	"github.com/go-redis/redis/v8"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*database.DB)(nil)
)

// Open builds the Store selected by cfg.Storage.Driver, instrumented with metrics
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	driver := cfg.Storage.Driver
	switch driver {
	case "memory":
		return Instrument(driver, NewMemoryStore()), nil
	case "file", "":
		return Instrument("file", NewFileStore(cfg.Storage.Path)), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return Instrument(driver, NewRedisStore(client, cfg.Storage.Namespace)), nil
	case "mysql":
		db, err := database.NewDB(ctx, cfg.Database.DSN, cfg.Storage.Namespace)
		if err != nil {
			return nil, err
		}
		return Instrument(driver, db), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
