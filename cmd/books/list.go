package books

import (
	"context"
	"fmt"
	"io"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/tui"
)

// ListOptions filters the book listing.
type ListOptions struct {
	Status      string
	Theme       string
	Recommended bool
}

// Filter returns the books matching opts, keeping their order.
func Filter(books []catalog.Book, opts ListOptions) []catalog.Book {
	var out []catalog.Book
	for _, b := range books {
		if opts.Status != "" && b.ReadingStatus != opts.Status {
			continue
		}
		if opts.Theme != "" && !b.HasTheme(opts.Theme) {
			continue
		}
		if opts.Recommended && !b.IsRecommended {
			continue
		}
		out = append(out, b)
	}
	return out
}

// List prints the catalog ordered by author and title.
func List(ctx context.Context, store datastore.Catalog, opts ListOptions, w io.Writer) error {
	if opts.Status != "" && !catalog.ValidStatus(opts.Status) {
		return fmt.Errorf("invalid status %q", opts.Status)
	}

	all, err := store.ListBooks(ctx, datastore.ListOptions{IncludeThemes: true})
	if err != nil {
		return err
	}
	if len(all) == 0 {
		_, _ = fmt.Fprintln(w, "No books in catalog. Add some with 'bookcatalog add'")
		return nil
	}

	books := Filter(all, opts)
	for _, b := range books {
		_, _ = fmt.Fprintln(w, tui.BookLine(b))
	}
	_, _ = fmt.Fprintf(w, "\nTotal: %d books\n", len(books))
	return nil
}

// Show prints every populated field of one book.
func Show(ctx context.Context, store datastore.Catalog, id int64, w io.Writer) error {
	book, err := store.GetBook(ctx, id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(w, tui.BookDetail(book))
	return nil
}
