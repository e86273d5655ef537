// Package books implements the commands that create, inspect and change
// individual catalog entries.
package books

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
)

// now is swapped in tests that depend on the default year read.
var now = time.Now

// AddOptions holds the fields of a new book as given on the command line.
type AddOptions struct {
	ISBN        string
	Title       string
	Author      string
	Translator  string
	Year        int
	YearRead    int
	DateRead    string
	Status      string
	Recommended bool
	Themes      string
	Notes       string
	Format      string
}

// ErrDuplicate is returned when a book with the same ISBN already exists.
var ErrDuplicate = errors.New("book already exists")

// Add inserts a book and tags it with the requested themes. Unknown themes
// are reported but do not fail the command.
func Add(ctx context.Context, store datastore.Catalog, opts AddOptions, w io.Writer) (int64, error) {
	status := opts.Status
	if status == "" {
		status = catalog.StatusRead
	}
	if !catalog.ValidStatus(status) {
		return 0, fmt.Errorf("invalid status %q", status)
	}
	if opts.Format != "" && !catalog.ValidFormat(opts.Format) {
		return 0, fmt.Errorf("invalid format %q", opts.Format)
	}

	var isbn, isbn13 string
	if opts.ISBN != "" {
		isbn, isbn13 = catalog.NormalizeISBN(opts.ISBN)
		for _, candidate := range []string{opts.ISBN, isbn, isbn13} {
			if candidate == "" {
				continue
			}
			existing, err := store.GetBookByISBN(ctx, candidate)
			if err == nil {
				_, _ = fmt.Fprintf(w, "Book already exists with ID %d: %s\n", existing.ID, existing.Title)
				return existing.ID, ErrDuplicate
			}
			if !errors.Is(err, datastore.ErrNotFound) {
				return 0, err
			}
		}
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Unknown Title"
	}

	yearRead := opts.YearRead
	if yearRead == 0 && opts.DateRead == "" {
		yearRead = now().Year()
	}

	book := &catalog.Book{
		ISBN:          isbn,
		ISBN13:        isbn13,
		Title:         title,
		Author:        strings.TrimSpace(opts.Author),
		Translator:    opts.Translator,
		YearPublished: opts.Year,
		YearRead:      yearRead,
		DateRead:      opts.DateRead,
		ReadingStatus: status,
		IsRecommended: opts.Recommended,
		MyNotes:       opts.Notes,
		Format:        opts.Format,
	}

	id, err := store.AddBook(ctx, book)
	if err != nil {
		return 0, err
	}
	_, _ = fmt.Fprintf(w, "Added book with ID %d: %s\n", id, book.Title)

	for _, slug := range splitList(opts.Themes) {
		if err := store.TagBook(ctx, id, slug); err != nil {
			slog.Warn("Could not tag book", "book_id", id, "theme", slug, "error", err)
			continue
		}
		_, _ = fmt.Fprintf(w, "  Tagged with: %s\n", slug)
	}

	if book.Identifier() != "" || book.Author != "" {
		_, _ = fmt.Fprintln(w, "\nRun 'bookcatalog enrich' to fetch covers and summaries")
	}
	return id, nil
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
