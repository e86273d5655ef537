package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/bookcatalog/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	DatabasePath       string
	ExportOutput       string
	ExportBackupDir    string
	RequestDelay       time.Duration
	RequestTimeout     time.Duration
	GoogleBooksAPIKey  string
	OpenLibraryBaseURL string
	GoogleBooksBaseURL string
	CacheEnabled       bool
	CacheDBPath        string
	CacheTTL           time.Duration
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		DatabasePath:       config.DatabasePath,
		ExportOutput:       config.ExportOutput,
		ExportBackupDir:    config.ExportBackupDir,
		RequestDelay:       config.RequestDelay,
		RequestTimeout:     config.RequestTimeout,
		GoogleBooksAPIKey:  config.GoogleBooksAPIKey,
		OpenLibraryBaseURL: config.OpenLibraryBaseURL,
		GoogleBooksBaseURL: config.GoogleBooksBaseURL,
		CacheEnabled:       config.CacheEnabled,
		CacheDBPath:        config.CacheDBPath,
		CacheTTL:           config.CacheTTL,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.DatabasePath = state.DatabasePath
	config.ExportOutput = state.ExportOutput
	config.ExportBackupDir = state.ExportBackupDir
	config.RequestDelay = state.RequestDelay
	config.RequestTimeout = state.RequestTimeout
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.OpenLibraryBaseURL = state.OpenLibraryBaseURL
	config.GoogleBooksBaseURL = state.GoogleBooksBaseURL
	config.CacheEnabled = state.CacheEnabled
	config.CacheDBPath = state.CacheDBPath
	config.CacheTTL = state.CacheTTL
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfigOption is a functional option for configuring test config.
type SetTestConfigOption func(*ConfigState)

// WithRequestDelay sets the spacing between outbound API requests.
func WithRequestDelay(d time.Duration) SetTestConfigOption {
	return func(o *ConfigState) {
		o.RequestDelay = d
	}
}

// WithBaseURLs points both metadata sources at test servers.
func WithBaseURLs(openLibrary, googleBooks string) SetTestConfigOption {
	return func(o *ConfigState) {
		o.OpenLibraryBaseURL = openLibrary
		o.GoogleBooksBaseURL = googleBooks
	}
}

// WithCache enables the response cache at path.
func WithCache(path string) SetTestConfigOption {
	return func(o *ConfigState) {
		o.CacheEnabled = true
		o.CacheDBPath = path
	}
}

// SetTestConfig points every file setting into env and applies opts. Outbound
// requests are not spaced unless WithRequestDelay says otherwise. The previous
// state is restored when the test completes.
func SetTestConfig(t *testing.T, env *TestEnv, opts ...SetTestConfigOption) {
	t.Helper()

	ResetConfig(t)

	options := ConfigState{
		DatabasePath:       env.Path("books.db"),
		ExportOutput:       env.Path("catalog.json"),
		ExportBackupDir:    env.Path("exports"),
		RequestTimeout:     5 * time.Second,
		OpenLibraryBaseURL: config.DefaultOpenLibraryBaseURL,
		GoogleBooksBaseURL: config.DefaultGoogleBooksBaseURL,
		CacheDBPath:        env.Path("cache.db"),
		CacheTTL:           time.Hour,
	}

	for _, opt := range opts {
		opt(&options)
	}

	RestoreConfigState(options)
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so a key that was never set stays set.
	})
}
