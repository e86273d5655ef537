package testutil

import (
	"context"
	"testing"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
)

// NewTestStore opens a migrated catalog database inside env. It is closed
// when the test completes.
func NewTestStore(t *testing.T, env *TestEnv) *datastore.SQLiteStore {
	t.Helper()

	store, err := datastore.Open(context.Background(), env.Path("books.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// SeedBooks adds books to store, tagging each with its Themes, and returns
// the new ids in order. Themes are created on first use.
func SeedBooks(t *testing.T, store *datastore.SQLiteStore, books ...catalog.Book) []int64 {
	t.Helper()

	ctx := context.Background()
	ids := make([]int64, 0, len(books))
	for i := range books {
		b := books[i]
		id, err := store.AddBook(ctx, &b)
		if err != nil {
			t.Fatalf("failed to add book %q: %v", b.Title, err)
		}
		for _, slug := range b.Themes {
			if _, err := store.GetThemeBySlug(ctx, slug); err != nil {
				if _, err := store.CreateTheme(ctx, &catalog.Theme{Name: slug, Slug: slug}); err != nil {
					t.Fatalf("failed to create theme %q: %v", slug, err)
				}
			}
			if err := store.TagBook(ctx, id, slug); err != nil {
				t.Fatalf("failed to tag book %q: %v", b.Title, err)
			}
		}
		ids = append(ids, id)
	}
	return ids
}
