// Package themes implements the theme management commands.
package themes

import (
	"context"
	"fmt"
	"io"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/tui"
)

// Store is the part of the catalog the theme commands need.
type Store interface {
	ThemesWithCounts(ctx context.Context) ([]catalog.ThemeCount, error)
	CreateTheme(ctx context.Context, theme *catalog.Theme) (int64, error)
	GetThemeBySlug(ctx context.Context, slug string) (*catalog.Theme, error)
	DeleteTheme(ctx context.Context, id int64) error
	SeedThemes(ctx context.Context, themes []catalog.Theme) (int, error)
}

var _ Store = (*datastore.SQLiteStore)(nil)

// List prints every theme with its book count.
func List(ctx context.Context, store Store, w io.Writer) error {
	themes, err := store.ThemesWithCounts(ctx)
	if err != nil {
		return err
	}
	if len(themes) == 0 {
		_, _ = fmt.Fprintln(w, "No themes defined.")
		return nil
	}
	for _, t := range themes {
		_, _ = fmt.Fprintln(w, tui.ThemeLine(t))
	}
	return nil
}

// Add creates a theme. The slug is sanitised, or derived from name when empty.
func Add(ctx context.Context, store Store, name, slug, description string, order int, w io.Writer) error {
	if name == "" {
		return fmt.Errorf("theme name is required")
	}
	if slug == "" {
		slug = name
	}
	slug = catalog.Slugify(slug)
	if slug == "" {
		return fmt.Errorf("slug for %q is empty after sanitising", name)
	}

	theme := &catalog.Theme{Name: name, Slug: slug, Description: description, DisplayOrder: order}
	if _, err := store.CreateTheme(ctx, theme); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Added theme '%s' with slug '%s'\n", name, slug)
	return nil
}

// Delete removes a theme by slug. Books keep existing, only the tags go.
func Delete(ctx context.Context, store Store, slug string, w io.Writer) error {
	theme, err := store.GetThemeBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := store.DeleteTheme(ctx, theme.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Deleted theme: %s\n", slug)
	return nil
}

// Import adds the themes from a YAML file that do not exist yet.
func Import(ctx context.Context, store Store, path string, w io.Writer) error {
	themes, err := catalog.LoadThemesFile(path)
	if err != nil {
		return err
	}
	created, err := store.SeedThemes(ctx, themes)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Imported %d of %d themes from %s\n", created, len(themes), path)
	return nil
}
