package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

// CreateTheme inserts a theme, deriving its slug from the name when empty.
func (s *SQLiteStore) CreateTheme(ctx context.Context, theme *catalog.Theme) (int64, error) {
	if theme.Name == "" {
		return 0, fmt.Errorf("theme name is required")
	}
	if theme.Slug == "" {
		theme.Slug = catalog.Slugify(theme.Name)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO themes (name, slug, description, display_order) VALUES (?, ?, ?, ?)",
		theme.Name, theme.Slug, nullString(theme.Description), theme.DisplayOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to create theme %q: %w", theme.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	theme.ID = id
	return id, nil
}

// SeedThemes inserts themes that do not exist yet, matched by slug.
// It returns the number of themes created.
func (s *SQLiteStore) SeedThemes(ctx context.Context, themes []catalog.Theme) (int, error) {
	created := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, theme := range themes {
			slug := theme.Slug
			if slug == "" {
				slug = catalog.Slugify(theme.Name)
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO themes (name, slug, description, display_order) VALUES (?, ?, ?, ?)
				 ON CONFLICT DO NOTHING`,
				theme.Name, slug, nullString(theme.Description), theme.DisplayOrder)
			if err != nil {
				return fmt.Errorf("failed to seed theme %q: %w", theme.Name, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Debug("Seeded themes", "created", created, "total", len(themes))
	return created, nil
}

// ListThemes returns every theme in display order.
func (s *SQLiteStore) ListThemes(ctx context.Context) ([]catalog.Theme, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, slug, description, display_order FROM themes ORDER BY display_order, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query themes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var themes []catalog.Theme
	for rows.Next() {
		theme, err := scanTheme(rows)
		if err != nil {
			return nil, err
		}
		themes = append(themes, *theme)
	}
	return themes, rows.Err()
}

// GetThemeBySlug looks a theme up by its slug.
func (s *SQLiteStore) GetThemeBySlug(ctx context.Context, slug string) (*catalog.Theme, error) {
	theme, err := scanTheme(s.db.QueryRowContext(ctx,
		"SELECT id, name, slug, description, display_order FROM themes WHERE slug = ?", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("theme %q: %w", slug, ErrThemeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return theme, nil
}

// ThemesWithCounts returns every theme with the number of books tagged with it.
func (s *SQLiteStore) ThemesWithCounts(ctx context.Context) ([]catalog.ThemeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.description, t.display_order, COUNT(bt.book_id)
		FROM themes t
		LEFT JOIN book_themes bt ON t.id = bt.theme_id
		GROUP BY t.id
		ORDER BY t.display_order, t.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query theme counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []catalog.ThemeCount
	for rows.Next() {
		var (
			tc          catalog.ThemeCount
			description sql.NullString
			order       sql.NullInt64
		)
		if err := rows.Scan(&tc.ID, &tc.Name, &tc.Slug, &description, &order, &tc.BookCount); err != nil {
			return nil, fmt.Errorf("failed to scan theme count: %w", err)
		}
		tc.Description = description.String
		tc.DisplayOrder = int(order.Int64)
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// DeleteTheme removes a theme. Book assignments cascade.
func (s *SQLiteStore) DeleteTheme(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM themes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete theme %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("theme %d: %w", id, ErrNotFound)
	}
	return nil
}

// TagBook assigns a theme to a book. Tagging twice is a no-op.
func (s *SQLiteStore) TagBook(ctx context.Context, bookID int64, themeSlug string) error {
	theme, err := s.GetThemeBySlug(ctx, themeSlug)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO book_themes (book_id, theme_id) VALUES (?, ?)", bookID, theme.ID); err != nil {
		return fmt.Errorf("failed to tag book %d with %s: %w", bookID, themeSlug, err)
	}
	return nil
}

// UntagBook removes a theme assignment from a book.
func (s *SQLiteStore) UntagBook(ctx context.Context, bookID int64, themeSlug string) error {
	theme, err := s.GetThemeBySlug(ctx, themeSlug)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM book_themes WHERE book_id = ? AND theme_id = ?", bookID, theme.ID); err != nil {
		return fmt.Errorf("failed to untag book %d: %w", bookID, err)
	}
	return nil
}

// BookThemes returns the slugs of the themes assigned to a book.
func (s *SQLiteStore) BookThemes(ctx context.Context, bookID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.slug FROM themes t
		JOIN book_themes bt ON t.id = bt.theme_id
		WHERE bt.book_id = ?
		ORDER BY t.display_order, t.name`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query book themes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func scanTheme(row rowScanner) (*catalog.Theme, error) {
	var (
		theme       catalog.Theme
		description sql.NullString
		order       sql.NullInt64
	)
	if err := row.Scan(&theme.ID, &theme.Name, &theme.Slug, &description, &order); err != nil {
		return nil, err
	}
	theme.Description = description.String
	theme.DisplayOrder = int(order.Int64)
	return &theme, nil
}
