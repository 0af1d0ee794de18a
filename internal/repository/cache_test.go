package repository

import (
	"context"
	"testing"
	"time"

	"bookmarks/internal/logger"
)

func TestCacheRepository_GetPut(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCacheRepository(db, logger.Discard())
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	if _, ok, err := repo.Get(ctx, "bing-dark"); err != nil || ok {
		t.Fatalf("Get() on empty cache = %v, %v", ok, err)
	}

	if err := repo.Put(ctx, "bing-dark", `{"url":"a"}`, 24*time.Hour); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	value, ok, err := repo.Get(ctx, "bing-dark")
	if err != nil || !ok || value != `{"url":"a"}` {
		t.Fatalf("Get() = %q, %v, %v", value, ok, err)
	}

	// Keys are independent
	if _, ok, _ := repo.Get(ctx, "bing-light"); ok {
		t.Error("Get(bing-light) should miss")
	}

	// Overwrite keeps a single entry
	if err := repo.Put(ctx, "bing-dark", `{"url":"b"}`, time.Hour); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	value, _, _ = repo.Get(ctx, "bing-dark")
	if value != `{"url":"b"}` {
		t.Errorf("Get() after overwrite = %q", value)
	}

	// Entries expire once the ttl has elapsed
	now = now.Add(time.Hour)
	if _, ok, err := repo.Get(ctx, "bing-dark"); err != nil || ok {
		t.Errorf("Get() after expiry = %v, %v", ok, err)
	}

	var rows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM kv_cache`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 0 {
		t.Errorf("expired entry not evicted, %d rows left", rows)
	}
}

func TestCacheRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCacheRepository(db, logger.Discard())
	ctx := context.Background()

	if err := repo.Put(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Error("Get() after Delete() should miss")
	}
}
