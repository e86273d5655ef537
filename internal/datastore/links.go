package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

// AddLink attaches a link to a book and returns the link id.
func (s *SQLiteStore) AddLink(ctx context.Context, link *catalog.Link) (int64, error) {
	if !catalog.ValidLinkType(link.Type) {
		return 0, fmt.Errorf("invalid link type %q", link.Type)
	}
	if link.URL == "" {
		return 0, fmt.Errorf("link url is required")
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO book_links (book_id, link_type, url, title, notes) VALUES (?, ?, ?, ?, ?)",
		link.BookID, link.Type, link.URL, nullString(link.Title), nullString(link.Notes))
	if err != nil {
		return 0, fmt.Errorf("failed to add link to book %d: %w", link.BookID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	link.ID = id
	return id, nil
}

// BookLinks returns the links attached to a book in insertion order.
func (s *SQLiteStore) BookLinks(ctx context.Context, bookID int64) ([]catalog.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, book_id, link_type, url, title, notes FROM book_links WHERE book_id = ? ORDER BY id", bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []catalog.Link
	for rows.Next() {
		var (
			link         catalog.Link
			title, notes sql.NullString
		)
		if err := rows.Scan(&link.ID, &link.BookID, &link.Type, &link.URL, &title, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		link.Title = title.String
		link.Notes = notes.String
		links = append(links, link)
	}
	return links, rows.Err()
}
