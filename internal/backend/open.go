// Package backend opens the storage backend named in the configuration.
package backend

import (
	"context"
	"fmt"

	"movexa_cms/internal/config"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/repository/filestore"
	"movexa_cms/internal/repository/memory"
	"movexa_cms/internal/repository/postgres"
	"movexa_cms/internal/repository/redisstore"

	"github.com/sirupsen/logrus"
)

// Open connects the configured backend. Postgres schemas are migrated before
// the store is returned. The caller owns the store and must Close it.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*repository.Store, error) {
	log = log.WithField("backend", cfg.StorageBackend)

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := config.ConnectDB(ctx, cfg.DB, config.DefaultRetry, log)
		if err != nil {
			return nil, err
		}
		if err := config.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database migrations applied")
		store := postgres.NewStore(pool)
		store.Pinger = pool.Ping
		store.Closer = func() error {
			pool.Close()
			return nil
		}
		return store, nil

	case config.BackendRedis:
		rdb, err := redisstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("connected to redis")
		return redisstore.NewStore(rdb), nil

	case config.BackendFile:
		store, err := filestore.NewStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.WithField("dir", cfg.DataDir).Info("using JSON file storage")
		return store, nil

	case config.BackendMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
