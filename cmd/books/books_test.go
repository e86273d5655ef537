package books

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/testutil"
)

func setupStore(t *testing.T) *datastore.SQLiteStore {
	t.Helper()
	env := testutil.NewTestEnv(t)
	store := testutil.NewTestStore(t, env)

	var out bytes.Buffer
	assert.NoError(t, Init(context.Background(), store, false, &out))
	return store
}

func stubConfirm(t *testing.T, answer bool) *int {
	t.Helper()
	calls := 0
	orig := confirm
	confirm = func(string) (bool, error) {
		calls++
		return answer, nil
	}
	t.Cleanup(func() { confirm = orig })
	return &calls
}

func TestInitSeedsThemesOnce(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	themes, err := store.ListThemes(ctx)
	assert.NoError(t, err)
	seeded := len(themes)
	assert.True(t, seeded > 0)

	var out bytes.Buffer
	assert.NoError(t, Init(ctx, store, false, &out))
	assert.Contains(t, out.String(), "(0 themes added)")

	assert.NoError(t, Init(ctx, store, true, &out))
	themes, err = store.ListThemes(ctx)
	assert.NoError(t, err)
	assert.Equal(t, seeded, len(themes))
}

func TestAdd(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	origNow := now
	now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = origNow })

	var out bytes.Buffer
	id, err := Add(ctx, store, AddOptions{
		ISBN:   "978-0-374-52925-3",
		Title:  "The Emigrants",
		Author: "W. G. Sebald",
		Themes: "fiction, no-such-theme",
	}, &out)
	assert.NoError(t, err)

	book, err := store.GetBook(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "9780374529253", book.ISBN13)
	assert.Equal(t, "", book.ISBN)
	assert.Equal(t, catalog.StatusRead, book.ReadingStatus)
	assert.Equal(t, 2025, book.YearRead)
	assert.Equal(t, []string{"fiction"}, book.Themes)
	assert.Contains(t, out.String(), "Tagged with: fiction")
	assert.Contains(t, out.String(), "bookcatalog enrich")

	out.Reset()
	dupID, err := Add(ctx, store, AddOptions{ISBN: "9780374529253", Title: "Again"}, &out)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, id, dupID)
	assert.Contains(t, out.String(), "already exists")
}

func TestAddDefaultsAndValidation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	var out bytes.Buffer

	id, err := Add(ctx, store, AddOptions{DateRead: "2024-05-01"}, &out)
	assert.NoError(t, err)
	book, err := store.GetBook(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "Unknown Title", book.Title)
	assert.Equal(t, 0, book.YearRead)

	_, err = Add(ctx, store, AddOptions{Title: "X", Status: "finished"}, &out)
	assert.Error(t, err)
	_, err = Add(ctx, store, AddOptions{Title: "X", Format: "scroll"}, &out)
	assert.Error(t, err)
}

func TestListFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	testutil.SeedBooks(t, store,
		catalog.Book{Title: "Dune", Author: "Frank Herbert", ReadingStatus: catalog.StatusRead, IsRecommended: true, Themes: []string{"fiction"}},
		catalog.Book{Title: "SPQR", Author: "Mary Beard", ReadingStatus: catalog.StatusReading, Themes: []string{"history"}},
	)

	var out bytes.Buffer
	assert.NoError(t, List(ctx, store, ListOptions{}, &out))
	assert.Contains(t, out.String(), "Total: 2 books")

	out.Reset()
	assert.NoError(t, List(ctx, store, ListOptions{Theme: "history"}, &out))
	assert.Contains(t, out.String(), "SPQR")
	assert.False(t, bytes.Contains(out.Bytes(), []byte("Dune")))

	out.Reset()
	assert.NoError(t, List(ctx, store, ListOptions{Recommended: true, Status: catalog.StatusRead}, &out))
	assert.Contains(t, out.String(), "Total: 1 books")

	assert.Error(t, List(ctx, store, ListOptions{Status: "bogus"}, &out))
}

func TestShowAndEdit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	ids := testutil.SeedBooks(t, store, catalog.Book{Title: "Emma", Author: "Jane Austen", IsRecommended: true})

	var out bytes.Buffer
	assert.NoError(t, Edit(ctx, store, ids[0], EditOptions{Year: 1815, Status: catalog.StatusAbandoned, NotRecommended: true}, &out))

	book, err := store.GetBook(ctx, ids[0])
	assert.NoError(t, err)
	assert.Equal(t, 1815, book.YearPublished)
	assert.Equal(t, catalog.StatusAbandoned, book.ReadingStatus)
	assert.False(t, book.IsRecommended)
	assert.Equal(t, "Jane Austen", book.Author)

	out.Reset()
	assert.NoError(t, Show(ctx, store, ids[0], &out))
	assert.Contains(t, out.String(), "Emma")
	assert.Contains(t, out.String(), "1815")

	assert.Error(t, Edit(ctx, store, ids[0], EditOptions{Recommended: true, NotRecommended: true}, &out))
	err = Show(ctx, store, 999, &out)
	assert.True(t, errors.Is(err, datastore.ErrNotFound))
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	ids := testutil.SeedBooks(t, store, catalog.Book{Title: "Keep"}, catalog.Book{Title: "Drop"})

	var out bytes.Buffer
	calls := stubConfirm(t, false)
	assert.NoError(t, Delete(ctx, store, ids[0], false, &out))
	assert.Equal(t, 1, *calls)
	assert.Contains(t, out.String(), "Cancelled")
	_, err := store.GetBook(ctx, ids[0])
	assert.NoError(t, err)

	assert.NoError(t, Delete(ctx, store, ids[1], true, &out))
	assert.Equal(t, 1, *calls)
	_, err = store.GetBook(ctx, ids[1])
	assert.True(t, errors.Is(err, datastore.ErrNotFound))
}

func TestTagAndLink(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	ids := testutil.SeedBooks(t, store, catalog.Book{Title: "Walden"})

	var out bytes.Buffer
	assert.NoError(t, Tag(ctx, store, ids[0], "philosophy", false, &out))
	book, err := store.GetBook(ctx, ids[0])
	assert.NoError(t, err)
	assert.Equal(t, []string{"philosophy"}, book.Themes)

	assert.NoError(t, Tag(ctx, store, ids[0], "philosophy", true, &out))
	book, err = store.GetBook(ctx, ids[0])
	assert.NoError(t, err)
	assert.Equal(t, 0, len(book.Themes))

	err = Tag(ctx, store, ids[0], "nope", false, &out)
	assert.True(t, errors.Is(err, datastore.ErrThemeNotFound))

	assert.NoError(t, AddLink(ctx, store, catalog.Link{BookID: ids[0], Type: catalog.LinkReview, URL: "https://example.test/walden"}, &out))
	book, err = store.GetBook(ctx, ids[0])
	assert.NoError(t, err)
	assert.Equal(t, 1, len(book.Links))

	assert.Error(t, AddLink(ctx, store, catalog.Link{BookID: ids[0], Type: "blog", URL: "x"}, &out))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Equal(t, []string(nil), splitList(""))
}
