package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookmarks/internal/logger"
)

// CacheRepository is a key/value store with per-entry expiry, kept in the
// kv_cache table. Expired entries read as misses.
type CacheRepository struct {
	db     *sql.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *sql.DB, log *logger.Logger) *CacheRepository {
	log.Info("Cache repository initialized")
	return &CacheRepository{
		db:     db,
		logger: log,
		now:    time.Now,
	}
}

// Get returns the value stored under key and whether it was present and fresh
func (r *CacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()

	var value string
	var expiresAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_cache WHERE key = ?`, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		r.logger.Debug("Cache miss for '%s' (%v)", key, time.Since(start))
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Cache read failed for '%s': %v (%v)", key, err, time.Since(start))
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if r.now().Unix() >= expiresAt {
		r.logger.Debug("Cache entry '%s' expired (%v)", key, time.Since(start))
		if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_cache WHERE key = ? AND expires_at = ?`, key, expiresAt); err != nil {
			r.logger.Warn("Failed to evict expired cache entry '%s': %v", key, err)
		}
		return "", false, nil
	}

	r.logger.Debug("Cache hit for '%s' (%v)", key, time.Since(start))
	return value, true, nil
}

// Put stores value under key until ttl elapses
func (r *CacheRepository) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	start := time.Now()
	expiresAt := r.now().Add(ttl).Unix()

	query := `
		INSERT INTO kv_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		r.logger.Error("Cache write failed for '%s': %v (%v)", key, err, time.Since(start))
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	r.logger.Debug("Cached '%s' for %v (%v)", key, ttl, time.Since(start))
	return nil
}

// Delete removes key from the cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_cache WHERE key = ?`, key); err != nil {
		r.logger.Error("Cache delete failed for '%s': %v", key, err)
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	r.logger.Debug("Evicted '%s'", key)
	return nil
}
