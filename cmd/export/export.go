// Package export writes the catalog snapshot consumed by the static site.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/fileutil"
)

var now = time.Now

// Store is the part of the catalog export reads.
type Store interface {
	ListBooks(ctx context.Context, opts datastore.ListOptions) ([]catalog.Book, error)
	ThemesWithCounts(ctx context.Context) ([]catalog.ThemeCount, error)
}

// Publisher sends rows to a remote table.
type Publisher interface {
	Publish(ctx context.Context, table string, rows []map[string]any) error
}

// Options controls where the snapshot goes.
type Options struct {
	Output    string
	Pretty    bool
	BackupDir string
	CoversDir string

	DatasetteURL   string
	DatasetteToken string
	DatasetteDB    string
}

// Snapshot is the exported catalog document.
type Snapshot struct {
	GeneratedAt string       `json:"generated_at"`
	Stats       Stats        `json:"stats"`
	Themes      []ThemeEntry `json:"themes"`
	Books       []BookEntry  `json:"books"`
}

// Stats counts the whole catalog, not only the exported books.
type Stats struct {
	TotalBooks       int `json:"total_books"`
	RecommendedCount int `json:"recommended_count"`
	ThemesCount      int `json:"themes_count"`
}

// ThemeEntry is a theme that has at least one book.
type ThemeEntry struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BookCount   int    `json:"book_count"`
}

// LinkEntry is a book link as the site renders it.
type LinkEntry struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// BookEntry is an exported book. Unset fields are left out of the JSON.
type BookEntry struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Subtitle          string      `json:"subtitle,omitempty"`
	Author            string      `json:"author,omitempty"`
	AdditionalAuthors string      `json:"additional_authors,omitempty"`
	Translator        string      `json:"translator,omitempty"`
	YearPublished     int         `json:"year_published,omitempty"`
	OriginalYear      int         `json:"original_year,omitempty"`
	Language          string      `json:"language,omitempty"`
	OriginalLanguage  string      `json:"original_language,omitempty"`
	Publisher         string      `json:"publisher,omitempty"`
	PageCount         int         `json:"page_count,omitempty"`
	Format            string      `json:"format,omitempty"`
	CoverURL          string      `json:"cover_url,omitempty"`
	CoverImage        string      `json:"cover_image,omitempty"`
	Summary           string      `json:"summary,omitempty"`
	ReadingStatus     string      `json:"reading_status"`
	DateRead          string      `json:"date_read,omitempty"`
	YearRead          int         `json:"year_read,omitempty"`
	IsRecommended     bool        `json:"is_recommended"`
	MyNotes           string      `json:"my_notes,omitempty"`
	MySummary         string      `json:"my_summary,omitempty"`
	SeriesName        string      `json:"series_name,omitempty"`
	SeriesPosition    float64     `json:"series_position,omitempty"`
	Themes            []string    `json:"themes"`
	Links             []LinkEntry `json:"links"`
}

func exportable(status string) bool {
	return status == catalog.StatusRead || status == catalog.StatusReading
}

func newBookEntry(b catalog.Book) BookEntry {
	entry := BookEntry{
		ID:                b.ID,
		Title:             b.Title,
		Subtitle:          b.Subtitle,
		Author:            b.Author,
		AdditionalAuthors: b.AdditionalAuthors,
		Translator:        b.Translator,
		YearPublished:     b.YearPublished,
		OriginalYear:      b.OriginalYear,
		Language:          b.Language,
		OriginalLanguage:  b.OriginalLanguage,
		Publisher:         b.Publisher,
		PageCount:         b.PageCount,
		Format:            b.Format,
		CoverURL:          b.CoverURL,
		Summary:           b.Summary,
		ReadingStatus:     b.ReadingStatus,
		DateRead:          b.DateRead,
		YearRead:          b.YearRead,
		IsRecommended:     b.IsRecommended,
		MyNotes:           b.MyNotes,
		MySummary:         b.MySummary,
		SeriesName:        b.SeriesName,
		SeriesPosition:    b.SeriesPosition,
		Themes:            []string{},
		Links:             []LinkEntry{},
	}
	entry.Themes = append(entry.Themes, b.Themes...)
	for _, l := range b.Links {
		entry.Links = append(entry.Links, LinkEntry{Type: l.Type, URL: l.URL, Title: l.Title})
	}
	return entry
}

// Build assembles the snapshot from the store.
func Build(ctx context.Context, store Store) (*Snapshot, error) {
	books, err := store.ListBooks(ctx, datastore.ListOptions{IncludeThemes: true, IncludeLinks: true})
	if err != nil {
		return nil, err
	}
	themes, err := store.ThemesWithCounts(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		GeneratedAt: now().Format(time.RFC3339),
		Themes:      []ThemeEntry{},
		Books:       []BookEntry{},
	}
	snap.Stats.TotalBooks = len(books)
	snap.Stats.ThemesCount = len(themes)

	for _, t := range themes {
		if t.BookCount == 0 {
			continue
		}
		snap.Themes = append(snap.Themes, ThemeEntry{
			Slug:        t.Slug,
			Name:        t.Name,
			Description: t.Description,
			BookCount:   t.BookCount,
		})
	}

	for _, b := range books {
		if b.IsRecommended {
			snap.Stats.RecommendedCount++
		}
		if !exportable(b.ReadingStatus) {
			continue
		}
		snap.Books = append(snap.Books, newBookEntry(b))
	}

	sort.SliceStable(snap.Books, func(i, j int) bool {
		ai, aj := strings.ToLower(snap.Books[i].Author), strings.ToLower(snap.Books[j].Author)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(snap.Books[i].Title) < strings.ToLower(snap.Books[j].Title)
	})

	return snap, nil
}

// downloadCovers saves a thumbnail for every exported book with a cover URL
// and records the local filename. Failures are logged and skipped.
func downloadCovers(ctx context.Context, snap *Snapshot, dir string) int {
	downloaded := 0
	for i := range snap.Books {
		b := &snap.Books[i]
		if b.CoverURL == "" {
			continue
		}
		res, err := fileutil.DownloadCover(ctx, fileutil.CoverDownloadOptions{
			URL:       b.CoverURL,
			OutputDir: dir,
			Filename:  fileutil.BuildCoverFilename(b.ID, catalog.Slugify(b.Title)),
		})
		if err != nil {
			slog.Warn("Failed to download cover", "title", b.Title, "error", err)
			continue
		}
		b.CoverImage = res.Filename
		if res.Downloaded {
			downloaded++
		}
	}
	return downloaded
}

// publishRows flattens the exported books into Datasette rows. Links stay
// in the JSON snapshot only.
func publishRows(snap *Snapshot) []map[string]any {
	rows := make([]map[string]any, 0, len(snap.Books))
	for _, b := range snap.Books {
		rows = append(rows, datastore.RowFromStruct(b, datastore.RowOptions{JoinStringSlices: true}))
	}
	return rows
}

var newPublisher = func(opts Options) Publisher {
	return datastore.NewDatasetteClient(opts.DatasetteURL, opts.DatasetteDB, opts.DatasetteToken)
}

// Run builds the snapshot, writes it with a timestamped backup and
// optionally downloads covers and publishes to Datasette.
func Run(ctx context.Context, store Store, opts Options, w io.Writer) (*Snapshot, error) {
	_, _ = fmt.Fprintln(w, "Exporting book catalog...")

	snap, err := Build(ctx, store)
	if err != nil {
		return nil, err
	}

	if opts.CoversDir != "" {
		n := downloadCovers(ctx, snap, opts.CoversDir)
		_, _ = fmt.Fprintf(w, "Downloaded %d covers to %s\n", n, opts.CoversDir)
	}

	if err := fileutil.WriteJSONFile(snap, opts.Output, opts.Pretty); err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(w, "Exported %d books to %s\n", len(snap.Books), opts.Output)

	if opts.BackupDir != "" {
		backup := filepath.Join(opts.BackupDir, fmt.Sprintf("catalog_%s.json", now().Format("20060102_150405")))
		if err := fileutil.WriteJSONFile(snap, backup, true); err != nil {
			return nil, fmt.Errorf("failed to write backup: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Backup saved to %s\n", backup)
	}

	if opts.DatasetteURL != "" {
		if opts.DatasetteDB == "" {
			opts.DatasetteDB = "books"
		}
		if err := newPublisher(opts).Publish(ctx, "books", publishRows(snap)); err != nil {
			return nil, fmt.Errorf("failed to publish to Datasette: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Published %d books to %s\n", len(snap.Books), opts.DatasetteURL)
	}

	_, _ = fmt.Fprintln(w, "\nCatalog Summary:")
	_, _ = fmt.Fprintf(w, "  Total books: %d\n", snap.Stats.TotalBooks)
	_, _ = fmt.Fprintf(w, "  Recommended: %d\n", snap.Stats.RecommendedCount)
	_, _ = fmt.Fprintf(w, "  Themes: %d\n", snap.Stats.ThemesCount)
	_, _ = fmt.Fprintln(w, "\n  Books by theme:")
	for _, t := range snap.Themes {
		_, _ = fmt.Fprintf(w, "    %s: %d\n", t.Name, t.BookCount)
	}

	return snap, nil
}
