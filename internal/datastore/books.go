package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

const bookSelect = `SELECT id, isbn, isbn13, openlibrary_key,
	title, subtitle, author, additional_authors, translator,
	year_published, original_year, language, original_language,
	publisher, page_count, format,
	cover_url, summary,
	reading_status, date_started, date_read, year_read, reread,
	is_recommended, my_notes, my_summary, reading_context,
	series_name, series_position,
	created_at, updated_at
FROM books`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*catalog.Book, error) {
	var (
		b                                              catalog.Book
		isbn, isbn13, olKey, subtitle, author          sql.NullString
		additional, translator, language, origLanguage sql.NullString
		publisher, format, coverURL, summary, status   sql.NullString
		dateStarted, dateRead, notes, mySummary        sql.NullString
		readingContext, seriesName, created, updated   sql.NullString
		yearPublished, originalYear, pageCount         sql.NullInt64
		yearRead, reread                               sql.NullInt64
		recommended                                    sql.NullBool
		seriesPosition                                 sql.NullFloat64
	)

	err := row.Scan(&b.ID, &isbn, &isbn13, &olKey,
		&b.Title, &subtitle, &author, &additional, &translator,
		&yearPublished, &originalYear, &language, &origLanguage,
		&publisher, &pageCount, &format,
		&coverURL, &summary,
		&status, &dateStarted, &dateRead, &yearRead, &reread,
		&recommended, &notes, &mySummary, &readingContext,
		&seriesName, &seriesPosition,
		&created, &updated)
	if err != nil {
		return nil, err
	}

	b.ISBN = isbn.String
	b.ISBN13 = isbn13.String
	b.OpenLibraryKey = olKey.String
	b.Subtitle = subtitle.String
	b.Author = author.String
	b.AdditionalAuthors = additional.String
	b.Translator = translator.String
	b.YearPublished = int(yearPublished.Int64)
	b.OriginalYear = int(originalYear.Int64)
	b.Language = language.String
	b.OriginalLanguage = origLanguage.String
	b.Publisher = publisher.String
	b.PageCount = int(pageCount.Int64)
	b.Format = format.String
	b.CoverURL = coverURL.String
	b.Summary = summary.String
	b.ReadingStatus = status.String
	b.DateStarted = dateStarted.String
	b.DateRead = dateRead.String
	b.YearRead = int(yearRead.Int64)
	b.Reread = int(reread.Int64)
	b.IsRecommended = recommended.Bool
	b.MyNotes = notes.String
	b.MySummary = mySummary.String
	b.ReadingContext = readingContext.String
	b.SeriesName = seriesName.String
	b.SeriesPosition = seriesPosition.Float64
	b.CreatedAt = created.String
	b.UpdatedAt = updated.String

	return &b, nil
}

func bookValues(b *catalog.Book) []any {
	status := b.ReadingStatus
	if status == "" {
		status = catalog.StatusRead
	}
	return []any{
		nullString(b.ISBN), nullString(b.ISBN13), nullString(b.OpenLibraryKey),
		b.Title, nullString(b.Subtitle), nullString(b.Author), nullString(b.AdditionalAuthors), nullString(b.Translator),
		nullInt(b.YearPublished), nullInt(b.OriginalYear), nullString(b.Language), nullString(b.OriginalLanguage),
		nullString(b.Publisher), nullInt(b.PageCount), nullString(b.Format),
		nullString(b.CoverURL), nullString(b.Summary),
		status, nullString(b.DateStarted), nullString(b.DateRead), nullInt(b.YearRead), b.Reread,
		b.IsRecommended, nullString(b.MyNotes), nullString(b.MySummary), nullString(b.ReadingContext),
		nullString(b.SeriesName), nullFloat(b.SeriesPosition),
	}
}

// AddBook inserts a book and returns its new id.
func (s *SQLiteStore) AddBook(ctx context.Context, book *catalog.Book) (int64, error) {
	if strings.TrimSpace(book.Title) == "" {
		return 0, fmt.Errorf("book title is required")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(bookColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO books (%s) VALUES (%s)",
		strings.Join(bookColumns, ", "), placeholders)

	res, err := s.db.ExecContext(ctx, query, bookValues(book)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert book %q: %w", book.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	book.ID = id
	return id, nil
}

// UpdateBook writes every column of the book row.
func (s *SQLiteStore) UpdateBook(ctx context.Context, book *catalog.Book) error {
	sets := make([]string, len(bookColumns))
	for i, col := range bookColumns {
		sets[i] = col + " = ?"
	}
	query := fmt.Sprintf("UPDATE books SET %s WHERE id = ?", strings.Join(sets, ", "))

	args := append(bookValues(book), book.ID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("book %d: %w", book.ID, ErrNotFound)
	}
	return nil
}

// GetBook loads a single book with its themes and links.
func (s *SQLiteStore) GetBook(ctx context.Context, id int64) (*catalog.Book, error) {
	book, err := scanBook(s.db.QueryRowContext(ctx, bookSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	if err := s.loadRelations(ctx, book, ListOptions{IncludeThemes: true, IncludeLinks: true}); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBookByISBN finds a book whose isbn or isbn13 matches.
func (s *SQLiteStore) GetBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	book, err := scanBook(s.db.QueryRowContext(ctx,
		bookSelect+" WHERE isbn = ? OR isbn13 = ? LIMIT 1", isbn, isbn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book by isbn %s: %w", isbn, err)
	}
	return book, nil
}

// ListBooks returns every book ordered by author then title.
func (s *SQLiteStore) ListBooks(ctx context.Context, opts ListOptions) ([]catalog.Book, error) {
	books, err := s.queryBooks(ctx, bookSelect+" ORDER BY author, title")
	if err != nil {
		return nil, err
	}
	for i := range books {
		if err := s.loadRelations(ctx, &books[i], opts); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// ListNeedingEnrichment returns books missing a cover or summary that have
// either an ISBN or a title and author to search with, newest first.
func (s *SQLiteStore) ListNeedingEnrichment(ctx context.Context) ([]catalog.Book, error) {
	return s.queryBooks(ctx, bookSelect+`
		WHERE (cover_url IS NULL OR cover_url = '' OR summary IS NULL OR summary = '')
		  AND (isbn IS NOT NULL OR isbn13 IS NOT NULL OR (title IS NOT NULL AND author IS NOT NULL))
		ORDER BY created_at DESC, id DESC`)
}

// DeleteBook removes a book. Theme assignments and links cascade.
func (s *SQLiteStore) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) queryBooks(ctx context.Context, query string, args ...any) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []catalog.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

func (s *SQLiteStore) loadRelations(ctx context.Context, book *catalog.Book, opts ListOptions) error {
	if opts.IncludeThemes {
		themes, err := s.BookThemes(ctx, book.ID)
		if err != nil {
			return err
		}
		book.Themes = themes
	}
	if opts.IncludeLinks {
		links, err := s.BookLinks(ctx, book.ID)
		if err != nil {
			return err
		}
		book.Links = links
	}
	return nil
}
