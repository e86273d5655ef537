// Package enrich wires the metadata sources, the shared rate governor and the
// optional response cache into the enrichment coordinator.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookcatalog/internal/cache"
	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/config"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/book"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/googlebooks"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/openlibrary"
	"github.com/lepinkainen/bookcatalog/internal/ratelimit"
)

// Options selects which books to enrich.
type Options struct {
	BookID int64
	Force  bool
	DryRun bool
}

// NewCoordinator builds a coordinator from the global configuration. Both
// sources share one governor so the request delay applies across them. The
// returned cleanup closes the cache when one was opened.
func NewCoordinator(store book.Store) (*book.Coordinator, func(), error) {
	governor := ratelimit.New("metadata", config.RequestDelay)

	var responses *cache.CacheDB
	cleanup := func() {}
	if config.CacheEnabled {
		var err error
		responses, err = cache.Open(config.CacheDBPath, config.CacheTTL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to open cache database: %w", err)
		}
		cleanup = func() { _ = responses.Close() }
		slog.Debug("Response cache enabled", "path", config.CacheDBPath, "ttl", config.CacheTTL)
	}

	primary := openlibrary.New(openlibrary.Options{
		BaseURL:  config.OpenLibraryBaseURL,
		Timeout:  config.RequestTimeout,
		Governor: governor,
		Cache:    responses,
	})
	secondary := googlebooks.New(googlebooks.Options{
		BaseURL:  config.GoogleBooksBaseURL,
		APIKey:   config.GoogleBooksAPIKey,
		Timeout:  config.RequestTimeout,
		Governor: governor,
		Cache:    responses,
	})

	return book.NewCoordinator(store, primary, secondary), cleanup, nil
}

// Run enriches one book when opts.BookID is set, otherwise every candidate.
// A dry run only lists the books and their missing fields.
func Run(ctx context.Context, store book.Store, opts Options, w io.Writer) error {
	if opts.DryRun {
		return dryRun(ctx, store, opts, w)
	}

	coordinator, cleanup, err := NewCoordinator(store)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.BookID != 0 {
		outcome, err := coordinator.EnrichByID(ctx, opts.BookID, opts.Force)
		if err != nil {
			return err
		}
		switch {
		case outcome.Complete:
			_, _ = fmt.Fprintf(w, "Book %d already has all metadata\n", opts.BookID)
		case outcome.Changed:
			_, _ = fmt.Fprintf(w, "Book %d enriched: %s\n", opts.BookID, strings.Join(outcome.Found, ", "))
		default:
			_, _ = fmt.Fprintf(w, "No new data found for book %d\n", opts.BookID)
		}
		return nil
	}

	books, err := coordinator.Candidates(ctx, opts.Force)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		_, _ = fmt.Fprintln(w, "All books are already enriched!")
		return nil
	}

	slog.Info("Found books to enrich", "count", len(books), "delay", config.RequestDelay)
	summary := coordinator.EnrichBatch(ctx, books, opts.Force)
	_, _ = fmt.Fprintf(w, "Enriched %d of %d books", summary.Enriched, summary.Total)
	if summary.Failed > 0 {
		_, _ = fmt.Fprintf(w, " (%d failed)", summary.Failed)
	}
	_, _ = fmt.Fprintln(w)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enrichment stopped after %d of %d books: %w", summary.Processed, summary.Total, err)
	}
	return nil
}

// dryRun reports what Run would try to enrich without contacting any source.
func dryRun(ctx context.Context, store book.Store, opts Options, w io.Writer) error {
	if opts.BookID != 0 {
		b, err := store.GetBook(ctx, opts.BookID)
		if err != nil {
			return err
		}
		missing := book.MissingFields(b, opts.Force)
		if len(missing) == 0 {
			_, _ = fmt.Fprintf(w, "Book %d already has all metadata\n", b.ID)
			return nil
		}
		printWouldEnrich(w, b, missing)
		return nil
	}

	books, err := book.Candidates(ctx, store, opts.Force)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		_, _ = fmt.Fprintln(w, "All books are already enriched!")
		return nil
	}

	slog.Info("Dry run, no requests will be made", "count", len(books))
	_, _ = fmt.Fprintf(w, "Found %d books to enrich\n", len(books))
	for i := range books {
		printWouldEnrich(w, &books[i], book.MissingFields(&books[i], opts.Force))
	}
	return nil
}

func printWouldEnrich(w io.Writer, b *catalog.Book, missing []string) {
	_, _ = fmt.Fprintf(w, "Would enrich %d: %s (missing: %s)\n", b.ID, b.Title, strings.Join(missing, ", "))
}
