package books

import (
	"context"
	"fmt"
	"io"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
)

// Init creates the catalog schema and seeds the default themes. With reset
// every table is dropped first.
func Init(ctx context.Context, store *datastore.SQLiteStore, reset bool, w io.Writer) error {
	if reset {
		if err := store.Reset(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "Dropped existing catalog tables")
	} else if err := store.Migrate(ctx); err != nil {
		return err
	}

	themes, err := catalog.DefaultThemes()
	if err != nil {
		return err
	}
	created, err := store.SeedThemes(ctx, themes)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Catalog ready at %s (%d themes added)\n", store.Path(), created)
	return nil
}
