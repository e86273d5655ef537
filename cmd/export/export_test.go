package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/testutil"
)

func fixedNow(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func seedCatalog(t *testing.T, env *testutil.TestEnv) *datastore.SQLiteStore {
	t.Helper()
	store := testutil.NewTestStore(t, env)

	ids := testutil.SeedBooks(t, store,
		catalog.Book{
			Title:         "Meditations",
			Author:        "Marcus Aurelius",
			CoverURL:      "https://covers.openlibrary.org/b/id/7-L.jpg",
			Summary:       "Private notes on Stoic philosophy & duty.",
			ReadingStatus: catalog.StatusRead,
			DateRead:      "2024-01-10",
			YearRead:      2024,
			IsRecommended: true,
			Themes:        []string{"philosophy"},
		},
		catalog.Book{Title: "Ulysses", Author: "James Joyce", ReadingStatus: catalog.StatusWantToRead},
		catalog.Book{
			Title:         "Dune",
			Author:        "Frank Herbert",
			PageCount:     412,
			ReadingStatus: catalog.StatusReading,
			Themes:        []string{"scifi"},
		},
	)

	_, err := store.AddLink(context.Background(), &catalog.Link{
		BookID: ids[0],
		Type:   catalog.LinkReview,
		URL:    "https://example.com/review",
		Title:  "My review",
	})
	require.NoError(t, err)
	return store
}

func TestRunMatchesGolden(t *testing.T) {
	fixedNow(t)
	env := testutil.NewTestEnv(t)
	store := seedCatalog(t, env)

	var out bytes.Buffer
	snap, err := Run(context.Background(), store, Options{
		Output:    env.Path("site", "catalog.json"),
		Pretty:    true,
		BackupDir: env.Path("backups"),
	}, &out)
	require.NoError(t, err)
	assert.Len(t, snap.Books, 2)

	golden := testutil.NewGoldenHelper(t, "testdata")
	golden.AssertGoldenJSON("catalog.json", env.ReadFile("site/catalog.json"))

	env.RequireFileExists("backups/catalog_20240315_103000.json")
	assert.Contains(t, out.String(), "Exported 2 books to")
	assert.Contains(t, out.String(), "Recommended: 1")
	assert.Contains(t, out.String(), "philosophy: 1")
}

func TestBuildKeepsSummaryUnescaped(t *testing.T) {
	fixedNow(t)
	env := testutil.NewTestEnv(t)
	store := seedCatalog(t, env)

	_, err := Run(context.Background(), store, Options{Output: env.Path("catalog.json")}, &bytes.Buffer{})
	require.NoError(t, err)
	env.AssertFileContains("catalog.json", "philosophy & duty")
}

func TestBuildEmptyCatalog(t *testing.T) {
	fixedNow(t)
	env := testutil.NewTestEnv(t)
	store := testutil.NewTestStore(t, env)

	snap, err := Build(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, snap.Books)
	assert.NotNil(t, snap.Books)
	assert.NotNil(t, snap.Themes)
	assert.Equal(t, 0, snap.Stats.TotalBooks)
}

type recordingPublisher struct {
	table string
	rows  []map[string]any
}

func (p *recordingPublisher) Publish(_ context.Context, table string, rows []map[string]any) error {
	p.table = table
	p.rows = rows
	return nil
}

func TestRunPublishesToDatasette(t *testing.T) {
	fixedNow(t)
	env := testutil.NewTestEnv(t)
	store := seedCatalog(t, env)

	pub := &recordingPublisher{}
	var gotOpts Options
	orig := newPublisher
	newPublisher = func(opts Options) Publisher {
		gotOpts = opts
		return pub
	}
	t.Cleanup(func() { newPublisher = orig })

	_, err := Run(context.Background(), store, Options{
		Output:       env.Path("catalog.json"),
		DatasetteURL: "https://datasette.example.com",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "books", gotOpts.DatasetteDB)
	assert.Equal(t, "books", pub.table)
	require.Len(t, pub.rows, 2)
	assert.Equal(t, "Dune", pub.rows[0]["title"])
	assert.Equal(t, "philosophy", pub.rows[1]["themes"])
}

func TestRunDownloadsCovers(t *testing.T) {
	fixedNow(t)
	img := image.NewRGBA(image.Rect(0, 0, 800, 1200))
	for x := 0; x < 800; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer server.Close()

	env := testutil.NewTestEnv(t)
	store := testutil.NewTestStore(t, env)
	testutil.SeedBooks(t, store, catalog.Book{
		Title:         "Meditations",
		Author:        "Marcus Aurelius",
		CoverURL:      server.URL + "/cover.png",
		ReadingStatus: catalog.StatusRead,
	})

	var out bytes.Buffer
	snap, err := Run(context.Background(), store, Options{
		Output:    env.Path("catalog.json"),
		CoversDir: env.Path("covers"),
	}, &out)
	require.NoError(t, err)

	require.Len(t, snap.Books, 1)
	assert.Equal(t, "1-meditations.jpg", snap.Books[0].CoverImage)
	env.RequireFileExists("covers/1-meditations.jpg")
	assert.Contains(t, out.String(), "Downloaded 1 covers")
}
