package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fjod/yofoo_cart/internal/config"
	"github.com/fjod/yofoo_cart/internal/repository"
	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/fjod/yofoo_cart/internal/storage/mongostore"
	"github.com/fjod/yofoo_cart/internal/storage/redisstore"
	"github.com/redis/go-redis/v9"
)

// backends holds what openStorage opened, for shutdown.
type backends struct {
	kv      storage.Storage
	repo    *repository.Repository
	closers []func(context.Context) error
}

func (b *backends) close(ctx context.Context, log *slog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Warn("closing backend failed", "error", err)
		}
	}
}

// openRepository opens the SQL database that holds the outbox, and the
// key-value table when the storage backend is SQL.
func openRepository(cfg config.Config) (*repository.Repository, error) {
	var (
		repo *repository.Repository
		err  error
	)
	if cfg.Storage.Backend == "postgres" {
		repo, err = repository.NewPostgres(&repository.Credentials{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
		})
	} else {
		repo, err = repository.NewSQLite(cfg.Storage.SQLitePath)
	}
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	repo, err := openRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	b := &backends{repo: repo}
	b.closers = append(b.closers, func(context.Context) error { return repo.Close() })

	var inner storage.Storage
	switch cfg.Storage.Backend {
	case "memory":
		inner = storage.NewMemory()
	case "file":
		f, err := storage.NewFile(cfg.Storage.Dir)
		if err != nil {
			b.close(ctx, log)
			return nil, err
		}
		inner = f
	case "sqlite", "postgres":
		inner = repo
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			b.close(ctx, log)
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		inner = redisstore.New(client, 0)
	case "mongo":
		db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			b.close(ctx, log)
			return nil, err
		}
		b.closers = append(b.closers, func(ctx context.Context) error { return db.Client().Disconnect(ctx) })
		store := mongostore.New(db)
		if err := store.CreateIndexes(ctx); err != nil {
			log.Warn("creating mongo indexes failed", "error", err)
		}
		inner = store
	default:
		b.close(ctx, log)
		return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.Storage.Backend)
	}

	kv, err := encrypt(ctx, cfg.Storage, inner)
	if err != nil {
		b.close(ctx, log)
		return nil, fmt.Errorf("open encrypted storage: %w", err)
	}
	b.kv = kv
	return b, nil
}

// encrypt wraps inner with a key derived from the passphrase, or with the
// per-install key file when no passphrase is set.
func encrypt(ctx context.Context, sc config.StorageConfig, inner storage.Storage) (*storage.Encrypted, error) {
	if sc.Passphrase != "" {
		return storage.NewEncryptedWithPassphrase(ctx, inner, sc.Passphrase)
	}
	key, err := storage.LoadOrCreateKey(sc.KeyFile)
	if err != nil {
		return nil, err
	}
	return storage.NewEncrypted(inner, key)
}
