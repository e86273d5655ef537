package datastore

import (
	"context"
	"errors"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

var (
	// ErrNotFound is returned when a book, theme or link does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrThemeNotFound is returned when tagging with an unknown theme slug.
	ErrThemeNotFound = errors.New("theme not found")
)

// ListOptions controls which related records ListBooks loads.
type ListOptions struct {
	IncludeThemes bool
	IncludeLinks  bool
}

// Catalog is the full set of catalog operations backed by a relational store.
type Catalog interface {
	AddBook(ctx context.Context, book *catalog.Book) (int64, error)
	UpdateBook(ctx context.Context, book *catalog.Book) error
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error)
	ListBooks(ctx context.Context, opts ListOptions) ([]catalog.Book, error)
	ListNeedingEnrichment(ctx context.Context) ([]catalog.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	TagBook(ctx context.Context, bookID int64, themeSlug string) error
	UntagBook(ctx context.Context, bookID int64, themeSlug string) error
	BookThemes(ctx context.Context, bookID int64) ([]string, error)

	AddLink(ctx context.Context, link *catalog.Link) (int64, error)
	BookLinks(ctx context.Context, bookID int64) ([]catalog.Link, error)

	CreateTheme(ctx context.Context, theme *catalog.Theme) (int64, error)
	ListThemes(ctx context.Context) ([]catalog.Theme, error)
	GetThemeBySlug(ctx context.Context, slug string) (*catalog.Theme, error)
	ThemesWithCounts(ctx context.Context) ([]catalog.ThemeCount, error)
	DeleteTheme(ctx context.Context, id int64) error

	Close() error
}

var _ Catalog = (*SQLiteStore)(nil)
