package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookcatalog/internal/csvutil"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
)

type isbnRow struct {
	id   int64
	isbn string
}

func parseISBNRow(r csvutil.Row) (isbnRow, error) {
	isbn := r.Get("found_isbn")
	if isbn == "" {
		isbn = r.Get("isbn_to_add")
	}
	if isbn == "" {
		return isbnRow{}, csvutil.ErrSkipRow
	}

	id, err := strconv.ParseInt(r.Get("id"), 10, 64)
	if err != nil {
		return isbnRow{}, fmt.Errorf("invalid id %q: %w", r.Get("id"), err)
	}

	isbn = strings.NewReplacer("-", "", " ", "").Replace(isbn)
	return isbnRow{id: id, isbn: isbn}, nil
}

// ISBNs fills in isbn or isbn13 from an id,found_isbn (or isbn_to_add) CSV.
// Values that are neither 10 nor 13 characters go into isbn13.
func ISBNs(ctx context.Context, store datastore.Catalog, path string, w io.Writer) (int, error) {
	rows, err := csvutil.ProcessCSV(path, parseISBNRow, csvutil.ProcessorOptions{SkipInvalid: true})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, row := range rows {
		book, err := store.GetBook(ctx, row.id)
		if errors.Is(err, datastore.ErrNotFound) {
			_, _ = fmt.Fprintf(w, "Book ID %d not found\n", row.id)
			continue
		}
		if err != nil {
			return updated, err
		}

		if len(row.isbn) == 10 {
			book.ISBN = row.isbn
		} else {
			book.ISBN13 = row.isbn
		}

		if err := store.UpdateBook(ctx, book); err != nil {
			return updated, err
		}
		_, _ = fmt.Fprintf(w, "Updated: %s\n", book.Title)
		updated++
	}

	_, _ = fmt.Fprintf(w, "\nUpdated %d books with ISBNs\n", updated)
	return updated, nil
}

type reviewRow struct {
	id          int64
	themes      []string
	hasThemes   bool
	recommended bool
}

func parseReviewRow(r csvutil.Row) (reviewRow, error) {
	id, err := strconv.ParseInt(r.Get("id"), 10, 64)
	if err != nil {
		return reviewRow{}, fmt.Errorf("invalid id %q: %w", r.Get("id"), err)
	}
	themes := splitThemes(r.Get("new_themes"))
	return reviewRow{
		id:          id,
		themes:      themes,
		hasThemes:   len(themes) > 0,
		recommended: parseFlag(r.Get("recommended")),
	}, nil
}

// ReviewSummary counts the changes a review import made.
type ReviewSummary struct {
	ThemeChanges          int
	RecommendationChanges int
	Errors                []string
}

// Reviews applies a reviewed spreadsheet to the catalog. A non-empty
// new_themes cell replaces the book's themes and the recommended cell sets
// the flag. Rows naming unknown themes are reported and left untouched.
func Reviews(ctx context.Context, store datastore.Catalog, path string, w io.Writer) (ReviewSummary, error) {
	rows, err := csvutil.ProcessCSV(path, parseReviewRow, csvutil.ProcessorOptions{SkipInvalid: true})
	if err != nil {
		return ReviewSummary{}, err
	}

	themes, err := store.ListThemes(ctx)
	if err != nil {
		return ReviewSummary{}, err
	}
	valid := make(map[string]bool, len(themes))
	for _, t := range themes {
		valid[t.Slug] = true
	}

	var summary ReviewSummary
	for _, row := range rows {
		book, err := store.GetBook(ctx, row.id)
		if errors.Is(err, datastore.ErrNotFound) {
			summary.Errors = append(summary.Errors, fmt.Sprintf("Book ID %d not found", row.id))
			continue
		}
		if err != nil {
			return summary, err
		}

		if row.hasThemes {
			var invalid []string
			for _, slug := range row.themes {
				if !valid[slug] {
					invalid = append(invalid, slug)
				}
			}
			if len(invalid) > 0 {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("Book %d '%s': invalid themes %v", book.ID, book.Title, invalid))
				continue
			}

			changed, err := replaceThemes(ctx, store, book.ID, book.Themes, row.themes)
			if err != nil {
				return summary, err
			}
			if changed {
				summary.ThemeChanges++
				_, _ = fmt.Fprintf(w, "Themes updated: %s\n", book.Title)
			}
		}

		if row.recommended != book.IsRecommended {
			book.IsRecommended = row.recommended
			if err := store.UpdateBook(ctx, book); err != nil {
				return summary, err
			}
			summary.RecommendationChanges++
			status := "unmarked"
			if row.recommended {
				status = "recommended"
			}
			_, _ = fmt.Fprintf(w, "Recommendation %s: %s\n", status, book.Title)
		}
	}

	_, _ = fmt.Fprintf(w, "\nComplete: %d theme changes, %d recommendation changes\n",
		summary.ThemeChanges, summary.RecommendationChanges)
	if len(summary.Errors) > 0 {
		_, _ = fmt.Fprintf(w, "\nErrors (%d):\n", len(summary.Errors))
		for _, e := range summary.Errors {
			_, _ = fmt.Fprintf(w, "  %s\n", e)
			slog.Warn("Review row rejected", "error", e)
		}
	}
	return summary, nil
}

// replaceThemes makes the book's themes equal to want and reports whether
// anything changed.
func replaceThemes(ctx context.Context, store datastore.Catalog, bookID int64, current, want []string) (bool, error) {
	changed := false
	for _, slug := range current {
		if !slices.Contains(want, slug) {
			if err := store.UntagBook(ctx, bookID, slug); err != nil {
				return changed, err
			}
			changed = true
		}
	}
	for _, slug := range want {
		if !slices.Contains(current, slug) {
			if err := store.TagBook(ctx, bookID, slug); err != nil {
				return changed, err
			}
			changed = true
		}
	}
	return changed, nil
}
