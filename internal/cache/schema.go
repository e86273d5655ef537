package cache

// Cache tables share one layout: the upstream lookup key, the JSON payload,
// when it was stored and how long it stays valid.
const cacheTableSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at TEXT NOT NULL,
	ttl_seconds INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_cached_at ON %[1]s(cached_at);
`

const (
	// OpenLibraryTable caches OpenLibrary edition, search and work responses.
	OpenLibraryTable = "openlibrary_cache"
	// GoogleBooksTable caches Google Books volume searches.
	GoogleBooksTable = "googlebooks_cache"
)

// sourceTables maps the user-facing source name to its cache table.
// It doubles as the whitelist for table names interpolated into SQL.
var sourceTables = map[string]string{
	"openlibrary": OpenLibraryTable,
	"googlebooks": GoogleBooksTable,
}
