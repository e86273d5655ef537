// Package dedupe removes duplicate catalog entries that share a title,
// keeping the copy that carries the most metadata.
package dedupe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/errors"
	"github.com/lepinkainen/bookcatalog/internal/tui"
)

// Store is the part of the catalog dedupe needs.
type Store interface {
	ListBooks(ctx context.Context, opts datastore.ListOptions) ([]catalog.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

// Options controls a dedupe run.
type Options struct {
	Execute     bool
	Interactive bool
}

// Summary reports what a run found and removed.
type Summary struct {
	Groups  int
	Planned int
	Deleted int
	Stopped bool
}

var selectKeeper = tui.SelectKeeper

// Score rates how much metadata a copy carries. Themes weigh the most since
// they are curated by hand.
func Score(b catalog.Book) int {
	score := len(b.Themes) * 10
	if b.PageCount > 0 {
		score += 5
	}
	if b.CoverURL != "" {
		score += 5
	}
	if b.Summary != "" {
		score += 3
	}
	if b.IsRecommended {
		score += 2
	}
	return score
}

// Group is a set of copies sharing a folded title, best copy first.
type Group struct {
	Title  string
	Copies []tui.Copy
}

// FindDuplicates groups books by folded title and returns only groups with
// more than one copy. Copies are ordered by score, ties by lowest id.
func FindDuplicates(books []catalog.Book) []Group {
	byTitle := make(map[string][]catalog.Book)
	var order []string
	for _, b := range books {
		key := catalog.FoldTitle(b.Title)
		if _, ok := byTitle[key]; !ok {
			order = append(order, key)
		}
		byTitle[key] = append(byTitle[key], b)
	}

	var groups []Group
	for _, key := range order {
		copies := byTitle[key]
		if len(copies) < 2 {
			continue
		}
		scored := make([]tui.Copy, 0, len(copies))
		for _, b := range copies {
			scored = append(scored, tui.Copy{Book: b, Score: Score(b)})
		}
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			return scored[i].Book.ID < scored[j].Book.ID
		})
		groups = append(groups, Group{Title: scored[0].Book.Title, Copies: scored})
	}
	return groups
}

// Run finds duplicate titles and prints the keep/delete plan. Nothing is
// deleted unless opts.Execute is set.
func Run(ctx context.Context, store Store, opts Options, w io.Writer) (Summary, error) {
	var summary Summary

	books, err := store.ListBooks(ctx, datastore.ListOptions{IncludeThemes: true})
	if err != nil {
		return summary, err
	}

	groups := FindDuplicates(books)
	summary.Groups = len(groups)

	var toDelete []int64
	for _, g := range groups {
		keeperID := g.Copies[0].Book.ID
		if opts.Interactive {
			res, err := selectKeeper(g.Title, g.Copies)
			if err != nil {
				return summary, err
			}
			switch res.Action {
			case tui.ActionStopped:
				summary.Stopped = true
			case tui.ActionSkipped:
				slog.Info("Skipping duplicate group", "title", g.Title)
				continue
			case tui.ActionSelected:
				keeperID = res.Keeper.ID
			}
			if summary.Stopped {
				break
			}
		}

		_, _ = fmt.Fprintf(w, "\n%s\n", g.Title)
		for _, c := range g.Copies {
			verb := "DELETE"
			if c.Book.ID == keeperID {
				verb = "KEEP"
			} else {
				toDelete = append(toDelete, c.Book.ID)
			}
			_, _ = fmt.Fprintf(w, "  %s: ID %d (score: %d, themes: %d, pages: %d)\n",
				verb, c.Book.ID, c.Score, len(c.Book.Themes), c.Book.PageCount)
		}
	}
	summary.Planned = len(toDelete)

	_, _ = fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	_, _ = fmt.Fprintf(w, "Total duplicates to remove: %d\n", len(toDelete))

	if !opts.Execute {
		_, _ = fmt.Fprintln(w, "\nDRY RUN - no changes made. Run with --execute to delete.")
	} else {
		for _, id := range toDelete {
			if err := store.DeleteBook(ctx, id); err != nil {
				return summary, fmt.Errorf("failed to delete duplicate %d: %w", id, err)
			}
			summary.Deleted++
		}
		_, _ = fmt.Fprintf(w, "\nDeleted %d duplicate books.\n", summary.Deleted)
	}

	if summary.Stopped {
		return summary, errors.NewStopProcessingError("dedupe stopped by user")
	}
	return summary, nil
}
