package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Default values for settings that have one.
const (
	DefaultDatabasePath       = "data/books.db"
	DefaultExportOutput       = "data/catalog.json"
	DefaultExportBackupDir    = "data/exports"
	DefaultCacheDBPath        = "cache.db"
	DefaultRequestDelay       = time.Second
	DefaultRequestTimeout     = 10 * time.Second
	DefaultCacheTTL           = 720 * time.Hour
	DefaultOpenLibraryBaseURL = "https://openlibrary.org"
	DefaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"
)

// Global configuration variables
var (
	// DatabasePath is the catalog SQLite file
	DatabasePath string
	// ExportOutput is where the JSON snapshot is written
	ExportOutput string
	// ExportBackupDir receives a timestamped copy of every export
	ExportBackupDir string

	// RequestDelay is the minimum spacing between outbound API requests
	RequestDelay time.Duration
	// RequestTimeout bounds each outbound API request
	RequestTimeout time.Duration

	// GoogleBooksAPIKey is optional; Google Books works without one at lower quota
	GoogleBooksAPIKey  string
	OpenLibraryBaseURL string
	GoogleBooksBaseURL string

	// CacheEnabled turns on the SQLite response cache for enrichment
	CacheEnabled bool
	CacheDBPath  string
	CacheTTL     time.Duration

	DatasetteURL   string
	DatasetteToken string
)

// SetDefaults registers default values with viper.
func SetDefaults() {
	viper.SetDefault("database", DefaultDatabasePath)
	viper.SetDefault("export.output", DefaultExportOutput)
	viper.SetDefault("export.backupdir", DefaultExportBackupDir)
	viper.SetDefault("enrich.delay", DefaultRequestDelay.String())
	viper.SetDefault("enrich.timeout", DefaultRequestTimeout.String())
	viper.SetDefault("openlibrary.baseurl", DefaultOpenLibraryBaseURL)
	viper.SetDefault("googlebooks.baseurl", DefaultGoogleBooksBaseURL)
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.dbfile", DefaultCacheDBPath)
	viper.SetDefault("cache.ttl", DefaultCacheTTL.String())
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	DatabasePath = viper.GetString("database")
	ExportOutput = viper.GetString("export.output")
	ExportBackupDir = viper.GetString("export.backupdir")

	RequestDelay = durationSetting("enrich.delay", DefaultRequestDelay)
	RequestTimeout = durationSetting("enrich.timeout", DefaultRequestTimeout)

	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	OpenLibraryBaseURL = viper.GetString("openlibrary.baseurl")
	GoogleBooksBaseURL = viper.GetString("googlebooks.baseurl")

	CacheEnabled = viper.GetBool("cache.enabled")
	CacheDBPath = viper.GetString("cache.dbfile")
	CacheTTL = durationSetting("cache.ttl", DefaultCacheTTL)

	DatasetteURL = viper.GetString("datasette.url")
	DatasetteToken = viper.GetString("datasette.token")
}

func durationSetting(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}
