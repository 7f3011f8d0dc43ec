package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/edubrasil/internal/shared"
)

// Store is a persistent key-value store.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// OpenStore returns the [Store] selected by cfg.Storage.Driver.
//
// db is used by the sqlite driver and may be nil for the others.
func OpenStore(ctx context.Context, cfg *shared.Config, db *sql.DB) (Store, error) {
	switch cfg.Storage.Driver {
	case shared.StorageSQLite:
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite storage requires a database", shared.ErrStorageUnavailable)
		}
		return NewSettingRepository(db), nil
	case shared.StorageRedis:
		store, err := NewRedisStore(ctx, RedisOpts{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
		}
		return store, nil
	case shared.StorageMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Storage.Driver)
	}
}
