package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db.Pool); err != nil {
		t.Fatal(err)
	}
	var v int
	if err := db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		t.Fatal(err)
	}
	if v != schemaVersion {
		t.Fatalf("user_version = %d", v)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	s := Session{
		ID: "sess-1", UserID: 42, Name: "Admin", Email: "admin@example.org", Role: "admin",
		APIToken: "tok", CSRF: "csrf", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	if err := CreateSession(ctx, db.Pool, s); err != nil {
		t.Fatal(err)
	}

	got, err := GetSession(ctx, db.Pool, "sess-1", now.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != 42 || got.APIToken != "tok" || !got.ExpiresAt.Equal(s.ExpiresAt) {
		t.Fatalf("session = %+v", got)
	}

	if _, err := GetSession(ctx, db.Pool, "sess-1", now.Add(2*time.Hour)); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session err = %v", err)
	}

	if err := TouchSession(ctx, db.Pool, "sess-1", now.Add(3*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := GetSession(ctx, db.Pool, "sess-1", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("touched session should be live: %v", err)
	}

	if err := DeleteSession(ctx, db.Pool, "sess-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetSession(ctx, db.Pool, "sess-1", now); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("deleted session err = %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, exp := range []time.Duration{-time.Minute, -time.Hour, time.Hour} {
		s := Session{ID: string(rune('a' + i)), Role: "jobseeker", APIToken: "t", CSRF: "c", CreatedAt: now, ExpiresAt: now.Add(exp)}
		if err := CreateSession(ctx, db.Pool, s); err != nil {
			t.Fatal(err)
		}
	}
	n, err := DeleteExpiredSessions(ctx, db.Pool, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
}

func TestFlashQueue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now()
	if err := CreateSession(ctx, db.Pool, Session{ID: "s", Role: "admin", APIToken: "t", CSRF: "c", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	_ = PushFlash(ctx, db.Pool, "s", Flash{Kind: "success", Message: "Saved"})
	_ = PushFlash(ctx, db.Pool, "s", Flash{Kind: "error", Message: "Oops"})

	got, err := PopFlashes(ctx, db.Pool, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Message != "Saved" || got[1].Kind != "error" {
		t.Fatalf("flashes = %+v", got)
	}
	again, _ := PopFlashes(ctx, db.Pool, "s")
	if len(again) != 0 {
		t.Fatalf("flashes not cleared: %+v", again)
	}

	if err := PushFlash(ctx, db.Pool, "missing", Flash{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("push to missing session err = %v", err)
	}
}

func TestLookupCache(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	_ = CachePut(ctx, db.Pool, "lookup:zones", []byte(`[1]`), now.Add(time.Minute))
	_ = CachePut(ctx, db.Pool, "lookup:zones", []byte(`[1,2]`), now.Add(time.Minute))
	_ = CachePut(ctx, db.Pool, "lookup:skills", []byte(`[3]`), now.Add(-time.Minute))
	_ = CachePut(ctx, db.Pool, "lookup_x", []byte(`[4]`), now.Add(time.Minute))

	b, ok, err := CacheGet(ctx, db.Pool, "lookup:zones", now)
	if err != nil || !ok || string(b) != `[1,2]` {
		t.Fatalf("get zones = %s %v %v", b, ok, err)
	}
	if _, ok, _ := CacheGet(ctx, db.Pool, "lookup:skills", now); ok {
		t.Fatal("expired entry returned")
	}

	if err := CacheDeletePrefix(ctx, db.Pool, "lookup:"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := CacheGet(ctx, db.Pool, "lookup:zones", now); ok {
		t.Fatal("prefix delete missed lookup:zones")
	}
	// "_" must not act as a wildcard
	if _, ok, _ := CacheGet(ctx, db.Pool, "lookup_x", now); !ok {
		t.Fatal("prefix delete removed unrelated key")
	}
}
