package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, DefaultDatabasePath, DatabasePath)
	assert.Equal(t, DefaultExportOutput, ExportOutput)
	assert.Equal(t, time.Second, RequestDelay)
	assert.Equal(t, 10*time.Second, RequestTimeout)
	assert.Equal(t, "https://openlibrary.org", OpenLibraryBaseURL)
	assert.False(t, CacheEnabled)
	assert.Equal(t, 720*time.Hour, CacheTTL)
	assert.Empty(t, GoogleBooksAPIKey)
}

func TestInitConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	testCases := []struct {
		name  string
		key   string
		value any
		check func(t *testing.T)
	}{
		{
			name:  "request delay",
			key:   "enrich.delay",
			value: "250ms",
			check: func(t *testing.T) { assert.Equal(t, 250*time.Millisecond, RequestDelay) },
		},
		{
			name:  "invalid delay falls back",
			key:   "enrich.delay",
			value: "soon",
			check: func(t *testing.T) { assert.Equal(t, DefaultRequestDelay, RequestDelay) },
		},
		{
			name:  "api key",
			key:   "googlebooks.apikey",
			value: "secret",
			check: func(t *testing.T) { assert.Equal(t, "secret", GoogleBooksAPIKey) },
		},
		{
			name:  "cache enabled",
			key:   "cache.enabled",
			value: true,
			check: func(t *testing.T) { assert.True(t, CacheEnabled) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			viper.Set(tc.key, tc.value)
			InitConfig()
			tc.check(t)
		})
	}
}
