package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// CacheGet returns a cached payload that has not expired.
func CacheGet(ctx context.Context, db *sql.DB, key string, now time.Time) ([]byte, bool, error) {
	var b []byte
	err := db.QueryRowContext(ctx,
		`SELECT payload FROM lookup_cache WHERE key = ? AND expires_at > ? LIMIT 1;`,
		key, formatTime(now),
	).Scan(&b)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func CachePut(ctx context.Context, db *sql.DB, key string, payload []byte, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO lookup_cache(key, payload, expires_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  payload = excluded.payload,
  expires_at = excluded.expires_at;
`, key, payload, formatTime(expiresAt))
	return err
}

// CacheDeletePrefix drops every key starting with prefix.
func CacheDeletePrefix(ctx context.Context, db *sql.DB, prefix string) error {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	_, err := db.ExecContext(ctx, `DELETE FROM lookup_cache WHERE key LIKE ? ESCAPE '\';`, esc+"%")
	return err
}

func CachePurgeExpired(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM lookup_cache WHERE expires_at <= ?;`, formatTime(now))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
