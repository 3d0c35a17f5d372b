package storage

import (
	"context"
	"fmt"

	"github.com/ignatzorin/proposely/internal/config"
	"github.com/ignatzorin/proposely/internal/db"
)

// Open создаёт хранилище по STORAGE_DRIVER. Возвращаемая функция освобождает соединения.
func Open(ctx context.Context, cfg *config.Config) (KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.StorageMemory:
		return NewMemoryStore(), noop, nil

	case config.StorageRedis:
		client, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, DefaultRedisPrefix), client.Close, nil

	case config.StoragePostgres:
		conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, conn, db.MigrationsFS(cfg.MigrationsPath)); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return NewPostgresStore(conn), conn.Close, nil

	case config.StorageFile, "":
		fileStore, err := NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return fileStore, noop, nil

	default:
		return nil, nil, fmt.Errorf("storage: неизвестный драйвер %q", cfg.StorageDriver)
	}
}
