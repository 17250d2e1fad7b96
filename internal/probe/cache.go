package probe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vmunix/gapscan/internal/migrations"
	_ "modernc.org/sqlite"
)

// Cache persists probe outcomes in SQLite so unchanged files are not
// re-probed on the next run. Rows are keyed by path and invalidated when
// the file's size or modification time changes.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenCache opens (or creates) the cache database at path.
func OpenCache(path string, logger *slog.Logger) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	c, err := NewCache(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewCache wraps an open database and applies the schema.
func NewCache(db *sql.DB, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// SQLite allows one writer; probes may run in parallel.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migrations.ProbeCacheSQL); err != nil {
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Count returns the number of cached entries.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM probe_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

// Clear removes every entry and returns how many were deleted.
func (c *Cache) Clear() (int64, error) {
	result, err := c.db.Exec(`DELETE FROM probe_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return result.RowsAffected()
}

// Wrap returns a Prober that consults the cache before calling inner.
func (c *Cache) Wrap(inner Prober) Prober {
	return &cachingProber{cache: c, inner: inner}
}

type fileKey struct {
	size      int64
	modTimeNS int64
}

type cachedEntry struct {
	timing Timing
	err    error
}

func (c *Cache) lookup(path string, key fileKey) (cachedEntry, bool) {
	var (
		size, modTimeNS int64
		ok              bool
		startAt         sql.NullString
		durationMS      sql.NullInt64
		reason          sql.NullString
	)
	err := c.db.QueryRow(`
		SELECT size, mod_time_ns, ok, start_at, duration_ms, reason
		FROM probe_cache WHERE path = ?`, path,
	).Scan(&size, &modTimeNS, &ok, &startAt, &durationMS, &reason)
	if errors.Is(err, sql.ErrNoRows) {
		return cachedEntry{}, false
	}
	if err != nil {
		c.logger.Warn("cache lookup failed", "path", path, "error", err)
		return cachedEntry{}, false
	}
	if size != key.size || modTimeNS != key.modTimeNS {
		return cachedEntry{}, false
	}

	if !ok {
		return cachedEntry{err: &ExtractionError{Path: path, Reason: reason.String}}, true
	}

	start, err := time.Parse(time.RFC3339Nano, startAt.String)
	if err != nil {
		c.logger.Warn("discarding corrupt cache entry", "path", path, "error", err)
		return cachedEntry{}, false
	}
	return cachedEntry{timing: Timing{
		Start:    start,
		Duration: time.Duration(durationMS.Int64) * time.Millisecond,
	}}, true
}

func (c *Cache) store(path string, key fileKey, timing Timing, probeErr error) {
	var (
		ok         bool
		startAt    sql.NullString
		durationMS sql.NullInt64
		reason     sql.NullString
	)
	if probeErr == nil {
		ok = true
		startAt = sql.NullString{String: timing.Start.Format(time.RFC3339Nano), Valid: true}
		durationMS = sql.NullInt64{Int64: timing.Duration.Milliseconds(), Valid: true}
	} else {
		var extErr *ExtractionError
		if errors.As(probeErr, &extErr) {
			reason = sql.NullString{String: extErr.Reason, Valid: true}
		} else {
			reason = sql.NullString{String: probeErr.Error(), Valid: true}
		}
	}

	_, err := c.db.Exec(`
		INSERT INTO probe_cache (path, size, mod_time_ns, ok, start_at, duration_ms, reason, probed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time_ns = excluded.mod_time_ns,
			ok = excluded.ok,
			start_at = excluded.start_at,
			duration_ms = excluded.duration_ms,
			reason = excluded.reason,
			probed_at = excluded.probed_at`,
		path, key.size, key.modTimeNS, ok, startAt, durationMS, reason,
	)
	if err != nil {
		c.logger.Warn("cache store failed", "path", path, "error", err)
	}
}

type cachingProber struct {
	cache *Cache
	inner Prober
}

func (p *cachingProber) Probe(ctx context.Context, path string) (Timing, error) {
	info, err := os.Stat(path)
	if err != nil {
		return p.inner.Probe(ctx, path)
	}
	key := fileKey{size: info.Size(), modTimeNS: info.ModTime().UnixNano()}

	if entry, ok := p.cache.lookup(path, key); ok {
		p.cache.logger.Debug("probe cache hit", "path", path)
		return entry.timing, entry.err
	}

	timing, err := p.inner.Probe(ctx, path)
	// Only per-file outcomes are worth remembering.
	if err == nil || errors.Is(err, ErrNotExtractable) {
		p.cache.store(path, key, timing, err)
	}
	return timing, err
}
