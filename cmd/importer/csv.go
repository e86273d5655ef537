// Package importer loads books and catalog corrections from CSV files.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/csvutil"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
)

// Summary counts what an import did.
type Summary struct {
	Added   int
	Skipped int
}

type importRow struct {
	book   catalog.Book
	themes []string
}

// parseCatalogRow maps one CSV row onto a book using the column map of format.
// Rows without a title are skipped.
func parseCatalogRow(format Format) func(csvutil.Row) (importRow, error) {
	columns := columnMaps[format]
	get := func(r csvutil.Row, field string) string {
		col, ok := columns[field]
		if !ok {
			return ""
		}
		value := r.Get(col)
		if field == colISBN || field == colISBN13 {
			value = catalog.CleanSpreadsheetISBN(value)
		}
		return value
	}

	return func(r csvutil.Row) (importRow, error) {
		title := get(r, colTitle)
		if title == "" {
			return importRow{}, csvutil.ErrSkipRow
		}

		dateRead, yearRead := parseDateRead(get(r, colDateRead))
		if yearRead == 0 {
			yearRead = parseInt(get(r, colYearRead))
		}

		return importRow{
			book: catalog.Book{
				Title:         title,
				Subtitle:      get(r, colSubtitle),
				Author:        get(r, colAuthor),
				ISBN:          get(r, colISBN),
				ISBN13:        get(r, colISBN13),
				YearPublished: parseYear(get(r, colYearPublished)),
				DateRead:      dateRead,
				YearRead:      yearRead,
				MyNotes:       get(r, colNotes),
				PageCount:     parseInt(get(r, colPageCount)),
				Publisher:     get(r, colPublisher),
				Summary:       get(r, colSummary),
				IsRecommended: parseFlag(get(r, colRecommended)),
				ReadingStatus: catalog.StatusRead,
			},
			themes: splitThemes(get(r, colThemes)),
		}, nil
	}
}

// CSV imports books from a Goodreads, StoryGraph or generic CSV export. Books
// whose ISBN is already in the catalog are skipped.
func CSV(ctx context.Context, store datastore.Catalog, path string, w io.Writer) (Summary, error) {
	headers, err := csvutil.Headers(path)
	if err != nil {
		return Summary{}, err
	}
	format := DetectFormat(headers)
	slog.Info("Importing books", "file", path, "format", format)

	rows, err := csvutil.ProcessCSV(path, parseCatalogRow(format), csvutil.ProcessorOptions{SkipInvalid: true})
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		book := row.book
		duplicate, err := isDuplicate(ctx, store, book.ISBN, book.ISBN13)
		if err != nil {
			return summary, err
		}
		if duplicate {
			_, _ = fmt.Fprintf(w, "Skipping duplicate: %s\n", book.Title)
			summary.Skipped++
			continue
		}

		id, err := store.AddBook(ctx, &book)
		if err != nil {
			return summary, err
		}
		_, _ = fmt.Fprintf(w, "Added: %s (ID: %d)\n", book.Title, id)
		summary.Added++

		for _, slug := range row.themes {
			if err := store.TagBook(ctx, id, slug); err != nil {
				slog.Debug("Skipping theme", "book_id", id, "theme", slug, "error", err)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nImport complete: %d added, %d skipped\n", summary.Added, summary.Skipped)
	if summary.Added > 0 {
		_, _ = fmt.Fprintln(w, "Run 'bookcatalog enrich' to fetch metadata for new books")
	}
	return summary, nil
}

func isDuplicate(ctx context.Context, store datastore.Catalog, isbns ...string) (bool, error) {
	for _, isbn := range isbns {
		if isbn == "" {
			continue
		}
		_, err := store.GetBookByISBN(ctx, isbn)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, datastore.ErrNotFound) {
			return false, err
		}
	}
	return false, nil
}
