package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("subdir", "file.txt")
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(env.RootDir(), "subdir", "file.txt"), path)
}

func TestTestEnv_WriteReadFile(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/test.txt", "test content")

	assert.Equal(t, "test content", env.ReadFileString("nested/test.txt"))
	assert.True(t, env.FileExists("nested/test.txt"))
	assert.False(t, env.FileExists("missing.txt"))
	env.RequireFileExists("nested/test.txt")
	env.AssertFileContains("nested/test.txt", "content")
}

func TestTestEnv_MkdirAllAndListFiles(t *testing.T) {
	env := NewTestEnv(t)

	env.MkdirAll("dir/sub")
	env.WriteFileString("dir/a.txt", "a")

	assert.ElementsMatch(t, []string{"a.txt", "sub"}, env.ListFiles("dir"))
}

func TestTestEnv_Chdir(t *testing.T) {
	env := NewTestEnv(t)
	env.MkdirAll("work")

	orig, err := os.Getwd()
	require.NoError(t, err)

	t.Run("inside", func(t *testing.T) {
		env.Chdir("work")
		wd, err := os.Getwd()
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(env.Path("work"))
		require.NoError(t, err)
		actual, err := filepath.EvalSymlinks(wd)
		require.NoError(t, err)
		assert.Equal(t, resolved, actual)
	})

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, orig, wd)
}

func TestTestEnv_SetEnv_Cleanup(t *testing.T) {
	key := "BOOKCATALOG_TESTUTIL_VAR"
	require.NoError(t, os.Unsetenv(key))

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		env.SetEnv(key, "value")
		assert.Equal(t, "value", os.Getenv(key))
	})

	_, ok := os.LookupEnv(key)
	assert.False(t, ok)
}

func TestGoldenHelper(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("golden/plain.txt", "hello\n")
	env.WriteFileString("golden/data.json", `{"a": 1, "b": [1, 2]}`)

	g := &GoldenHelper{t: t, goldenDir: env.Path("golden")}
	assert.False(t, g.IsUpdateMode())
	assert.Equal(t, env.Path("golden", "plain.txt"), g.GoldenPath("plain.txt"))

	g.AssertGolden("plain.txt", []byte("hello\n"))
	g.AssertGoldenJSON("data.json", []byte(`{"b":[1,2],"a":1}`))
}

func TestGoldenHelper_UpdateMode(t *testing.T) {
	env := NewTestEnv(t)

	g := &GoldenHelper{t: t, goldenDir: env.Path("golden"), updateMode: true}
	g.AssertGolden("new/out.txt", []byte("generated"))

	assert.Equal(t, "generated", env.ReadFileString("golden/new/out.txt"))
}

func TestSetTestConfig(t *testing.T) {
	origDelay := config.RequestDelay
	origDB := config.DatabasePath

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		SetTestConfig(t, env,
			WithRequestDelay(250*time.Millisecond),
			WithBaseURLs("http://ol.test", "http://gb.test"),
			WithCache(env.Path("c.db")))

		assert.Equal(t, env.Path("books.db"), config.DatabasePath)
		assert.Equal(t, 250*time.Millisecond, config.RequestDelay)
		assert.Equal(t, "http://ol.test", config.OpenLibraryBaseURL)
		assert.Equal(t, "http://gb.test", config.GoogleBooksBaseURL)
		assert.True(t, config.CacheEnabled)
		assert.Equal(t, env.Path("c.db"), config.CacheDBPath)
	})

	assert.Equal(t, origDelay, config.RequestDelay)
	assert.Equal(t, origDB, config.DatabasePath)
}

func TestSetViperValue(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Run("inner", func(t *testing.T) {
		SetViperValue(t, "enrich.delay", "2s")
		assert.Equal(t, "2s", viper.GetString("enrich.delay"))
	})
}

func TestNewTestStoreAndSeedBooks(t *testing.T) {
	env := NewTestEnv(t)
	store := NewTestStore(t, env)

	ids := SeedBooks(t, store,
		catalog.Book{Title: "Dune", Author: "Frank Herbert", Themes: []string{"scifi"}},
		catalog.Book{Title: "Emma", Author: "Jane Austen"},
	)
	require.Len(t, ids, 2)

	book, err := store.GetBook(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"scifi"}, book.Themes)
}
