// Package cache stores upstream API responses in a local SQLite database so
// repeated enrichment runs do not hit the network for lookups already made.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultCacheTTL is the default time-to-live for cached entries (30 days)
	DefaultCacheTTL = 720 * time.Hour
	// NegativeCacheTTL is the TTL for "not found" responses (7 days)
	NegativeCacheTTL = 168 * time.Hour
)

// FetchFunc fetches a value from the upstream source on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// CacheDB manages the SQLite database connection for caching
type CacheDB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Open opens (creating if needed) a cache database and its tables. A
// non-positive ttl falls back to DefaultCacheTTL.
func Open(dbPath string, ttl time.Duration) (*CacheDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &CacheDB{
		db:   db,
		path: dbPath,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}

	for _, table := range sourceTables {
		if _, err := db.Exec(fmt.Sprintf(cacheTableSchema, table)); err != nil {
			closeErr := db.Close()
			return nil, errors.Join(fmt.Errorf("failed to create cache table %s: %w", table, err), closeErr)
		}
	}
	return c, nil
}

// TTL returns the lifetime given to positive entries.
func (c *CacheDB) TTL() time.Duration {
	if c == nil {
		return DefaultCacheTTL
	}
	return c.ttl
}

// Close closes the database connection
func (c *CacheDB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// TableForSource maps a source name such as "openlibrary" to its cache table.
func TableForSource(source string) (string, error) {
	table, ok := sourceTables[source]
	if !ok {
		return "", fmt.Errorf("invalid cache source '%s'; valid sources are: %s", source, strings.Join(Sources(), ", "))
	}
	return table, nil
}

// Sources lists the cacheable source names in sorted order.
func Sources() []string {
	names := make([]string, 0, len(sourceTables))
	for name := range sourceTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateTableName(tableName string) error {
	for _, table := range sourceTables {
		if table == tableName {
			return nil
		}
	}
	return fmt.Errorf("invalid cache table name: %s", tableName)
}

// Get returns the cached payload for key when present and not expired.
func (c *CacheDB) Get(ctx context.Context, tableName, key string) (string, bool, error) {
	if err := validateTableName(tableName); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	query := fmt.Sprintf("SELECT data, cached_at, ttl_seconds FROM %s WHERE cache_key = ?", tableName)

	var (
		data     string
		cachedAt string
		ttlSecs  int64
	)
	err := c.db.QueryRowContext(ctx, query, key).Scan(&data, &cachedAt, &ttlSecs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	stored, err := time.Parse(time.RFC3339Nano, cachedAt)
	if err != nil {
		return "", false, fmt.Errorf("invalid cached_at %q: %w", cachedAt, err)
	}

	age := c.now().Sub(stored)
	if age > time.Duration(ttlSecs)*time.Second {
		slog.Debug("Cache expired", "table", tableName, "key", key, "age", age)
		return "", false, nil
	}
	return data, true, nil
}

// Set stores a payload under key with the given lifetime.
func (c *CacheDB) Set(ctx context.Context, tableName, key, data string, ttl time.Duration) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (cache_key, data, cached_at, ttl_seconds)
		VALUES (?, ?, ?, ?)
	`, tableName)

	_, err := c.db.ExecContext(ctx, query, key, data, c.now().Format(time.RFC3339Nano), int64(ttl/time.Second))
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// InvalidateSource deletes every entry from tableName and returns the number
// of rows removed.
func (c *CacheDB) InvalidateSource(ctx context.Context, tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Debug("Cache table cleared", "table", tableName, "rows_deleted", rowsAffected)
	return rowsAffected, nil
}

// SelectNegativeCacheTTL returns a TTL selector that gives "not found"
// results the shorter NegativeCacheTTL and everything else ttl.
func SelectNegativeCacheTTL[T any](ttl time.Duration, isNotFound func(T) bool) func(T) time.Duration {
	return func(result T) time.Duration {
		if isNotFound(result) {
			return NegativeCacheTTL
		}
		return ttl
	}
}

// GetOrFetch returns the cached value for key or calls fetch and stores its
// result. A nil cache fetches directly. Fetch errors are returned and never
// cached. ttlFor picks the lifetime of the fetched value; nil means the
// cache's default TTL. The bool result reports a cache hit.
func GetOrFetch[T any](ctx context.Context, c *CacheDB, tableName, key string, fetch FetchFunc[T], ttlFor func(T) time.Duration) (T, bool, error) {
	var zero T

	if c == nil {
		data, err := fetch(ctx)
		return data, false, err
	}

	cached, fromCache, err := c.Get(ctx, tableName, key)
	if err != nil {
		slog.Warn("Cache lookup failed, fetching directly", "table", tableName, "key", key, "error", err)
	}
	if err == nil && fromCache {
		var result T
		unmarshalErr := json.Unmarshal([]byte(cached), &result)
		if unmarshalErr == nil {
			slog.Debug("Cache hit", "table", tableName, "key", key)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, will refetch", "table", tableName, "key", key, "error", unmarshalErr)
	}

	slog.Debug("Cache miss, fetching data", "table", tableName, "key", key)
	data, err := fetch(ctx)
	if err != nil {
		return zero, false, err
	}

	ttl := c.ttl
	if ttlFor != nil {
		ttl = ttlFor(data)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", tableName, "key", key, "error", err)
		return data, false, nil
	}
	if err := c.Set(ctx, tableName, key, string(jsonData), ttl); err != nil {
		// Caching failure shouldn't stop the process
		slog.Warn("Failed to cache data", "table", tableName, "key", key, "error", err)
	} else {
		slog.Debug("Data cached successfully", "table", tableName, "key", key, "ttl", ttl)
	}

	return data, false, nil
}
