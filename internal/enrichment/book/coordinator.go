// Package book reconciles catalog books with the primary (OpenLibrary) and
// secondary (Google Books) metadata sources.
//
// Only empty enrichable fields are filled unless force is set, and values
// are taken by fixed precedence: the first non-empty value wins.
package book

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/googlebooks"
	"github.com/lepinkainen/bookcatalog/internal/enrichment/openlibrary"
)

// Primary is the first-choice metadata source.
type Primary interface {
	LookupByISBN(ctx context.Context, isbn string) *openlibrary.Record
	SearchByTitleAuthor(ctx context.Context, title, author string) *openlibrary.Record
	LookupWork(ctx context.Context, workKey string) *openlibrary.Work
}

// Secondary supplements whatever the primary source could not provide.
type Secondary interface {
	Search(ctx context.Context, isbn, title, author string) *googlebooks.Volume
}

// Store is the part of the catalog store the coordinator needs.
type Store interface {
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
	UpdateBook(ctx context.Context, book *catalog.Book) error
	ListNeedingEnrichment(ctx context.Context) ([]catalog.Book, error)
	ListBooks(ctx context.Context, opts datastore.ListOptions) ([]catalog.Book, error)
}

var (
	_ Primary   = (*openlibrary.Client)(nil)
	_ Secondary = (*googlebooks.Client)(nil)
	_ Store     = (*datastore.SQLiteStore)(nil)
)

// Coordinator runs the per-book enrichment algorithm.
type Coordinator struct {
	store     Store
	primary   Primary
	secondary Secondary
}

// NewCoordinator creates a Coordinator. Both adapters should share one
// rate governor.
func NewCoordinator(store Store, primary Primary, secondary Secondary) *Coordinator {
	return &Coordinator{
		store:     store,
		primary:   primary,
		secondary: secondary,
	}
}

// Outcome describes what EnrichOne did to a book.
type Outcome struct {
	// Complete is set when nothing was needed and no lookup was made.
	Complete bool
	// Changed is set when the book was written back to the store.
	Changed bool
	// Found lists the enrichable fields a value was found for.
	Found []string
}

// BatchSummary reports the result of EnrichBatch.
type BatchSummary struct {
	Enriched  int
	Total     int
	Failed    int
	Processed int
}

// Candidates returns the books a batch run should visit: those the store
// reports as needing enrichment, or every book when force is set.
func Candidates(ctx context.Context, store Store, force bool) ([]catalog.Book, error) {
	if force {
		return store.ListBooks(ctx, datastore.ListOptions{})
	}
	return store.ListNeedingEnrichment(ctx)
}

// Candidates is the package-level Candidates over the coordinator's store.
func (c *Coordinator) Candidates(ctx context.Context, force bool) ([]catalog.Book, error) {
	return Candidates(ctx, c.store, force)
}

// EnrichByID loads a single book and enriches it.
func (c *Coordinator) EnrichByID(ctx context.Context, id int64, force bool) (Outcome, error) {
	book, err := c.store.GetBook(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	return c.EnrichOne(ctx, book, force)
}

// EnrichOne fills the missing enrichable fields of book and persists it when
// anything changed. Lookup failures only mean "no data"; the returned error
// is always a store failure.
func (c *Coordinator) EnrichOne(ctx context.Context, book *catalog.Book, force bool) (Outcome, error) {
	log := slog.With("id", book.ID, "title", book.Title)

	n := needsFor(book, force)
	if !n.any() {
		log.Debug("Already complete, skipping")
		return Outcome{Complete: true}, nil
	}

	log.Info("Enriching book", "author", book.Author)
	src := c.gather(ctx, book, n)

	found, changed := fuse(book, n, src)
	outcome := Outcome{Found: found, Changed: changed}

	if len(found) > 0 {
		attrs := []any{"fields", found}
		if src.record != nil {
			attrs = append(attrs, "shape", src.record.Shape)
		}
		log.Info("Found metadata", attrs...)
	}
	if !changed {
		log.Info("No new data found")
		return outcome, nil
	}

	if err := c.store.UpdateBook(ctx, book); err != nil {
		return outcome, fmt.Errorf("saving book %d: %w", book.ID, err)
	}
	log.Info("Saved updates")
	return outcome, nil
}

// EnrichBatch enriches books one after another. A failed save is logged and
// counted and the batch moves on. Cancelling ctx stops between books.
func (c *Coordinator) EnrichBatch(ctx context.Context, books []catalog.Book, force bool) BatchSummary {
	summary := BatchSummary{Total: len(books)}

	for i := range books {
		if err := ctx.Err(); err != nil {
			slog.Warn("Enrichment interrupted", "processed", summary.Processed, "total", summary.Total)
			break
		}

		outcome, err := c.EnrichOne(ctx, &books[i], force)
		summary.Processed++
		if err != nil {
			summary.Failed++
			slog.Error("Failed to save enriched book", "id", books[i].ID, "title", books[i].Title, "error", err)
			continue
		}
		if outcome.Changed {
			summary.Enriched++
		}
	}

	slog.Info("Enrichment complete", "enriched", summary.Enriched, "total", summary.Total, "failed", summary.Failed)
	return summary
}

// sources holds whatever each lookup returned; any of them may be nil.
type sources struct {
	record *openlibrary.Record
	work   *openlibrary.Work
	volume *googlebooks.Volume
}

func (c *Coordinator) gather(ctx context.Context, book *catalog.Book, n needs) sources {
	var src sources
	isbn := book.Identifier()

	if isbn != "" {
		src.record = c.primary.LookupByISBN(ctx, isbn)
	}
	if src.record == nil && book.Title != "" {
		src.record = c.primary.SearchByTitleAuthor(ctx, book.Title, book.Author)
	}
	if src.record != nil && n.summary && src.record.WorkKey != "" {
		src.work = c.primary.LookupWork(ctx, src.record.WorkKey)
	}
	if n.cover || n.summary {
		src.volume = c.secondary.Search(ctx, isbn, book.Title, book.Author)
	}
	return src
}
