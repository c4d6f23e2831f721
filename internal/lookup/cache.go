package lookup

import (
	"context"
	"database/sql"
	"time"

	"jobportal/internal/store"
)

// Cache stores serialized option lists with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// SQLiteCache keeps entries in the portal database.
type SQLiteCache struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{DB: db, Now: time.Now}
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return store.CacheGet(ctx, c.DB, key, c.Now())
}

func (c *SQLiteCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return store.CachePut(ctx, c.DB, key, payload, c.Now().Add(ttl))
}

func (c *SQLiteCache) DeletePrefix(ctx context.Context, prefix string) error {
	return store.CacheDeletePrefix(ctx, c.DB, prefix)
}

// Purge drops expired rows; the scheduler calls it.
func (c *SQLiteCache) Purge(ctx context.Context) (int64, error) {
	return store.CachePurgeExpired(ctx, c.DB, c.Now())
}
