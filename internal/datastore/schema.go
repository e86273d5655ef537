package datastore

// catalogSchema creates every catalog table. All statements are idempotent so
// the schema is applied on every Connect.
const catalogSchema = `
CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY,

	isbn TEXT,
	isbn13 TEXT,
	openlibrary_key TEXT,

	title TEXT NOT NULL,
	subtitle TEXT,
	author TEXT,
	additional_authors TEXT,
	translator TEXT,
	year_published INTEGER,
	original_year INTEGER,
	language TEXT,
	original_language TEXT,

	publisher TEXT,
	page_count INTEGER,
	format TEXT,

	cover_url TEXT,
	summary TEXT,

	reading_status TEXT DEFAULT 'read',
	date_started TEXT,
	date_read TEXT,
	year_read INTEGER,
	reread INTEGER DEFAULT 0,

	is_recommended BOOLEAN DEFAULT 0,
	my_notes TEXT,
	my_summary TEXT,
	reading_context TEXT,

	series_name TEXT,
	series_position REAL,

	created_at TEXT DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS themes (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	slug TEXT UNIQUE NOT NULL,
	description TEXT,
	display_order INTEGER
);

CREATE TABLE IF NOT EXISTS book_themes (
	book_id INTEGER REFERENCES books(id) ON DELETE CASCADE,
	theme_id INTEGER REFERENCES themes(id) ON DELETE CASCADE,
	PRIMARY KEY (book_id, theme_id)
);

CREATE TABLE IF NOT EXISTS book_links (
	id INTEGER PRIMARY KEY,
	book_id INTEGER REFERENCES books(id) ON DELETE CASCADE,
	link_type TEXT NOT NULL,
	url TEXT NOT NULL,
	title TEXT,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_books_reading_status ON books(reading_status);
CREATE INDEX IF NOT EXISTS idx_books_is_recommended ON books(is_recommended);
CREATE INDEX IF NOT EXISTS idx_books_year_read ON books(year_read);
CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);
CREATE INDEX IF NOT EXISTS idx_books_isbn13 ON books(isbn13);

CREATE TRIGGER IF NOT EXISTS update_book_timestamp
	AFTER UPDATE ON books
	BEGIN
		UPDATE books SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END;
`

const dropSchema = `
DROP TRIGGER IF EXISTS update_book_timestamp;
DROP TABLE IF EXISTS book_links;
DROP TABLE IF EXISTS book_themes;
DROP TABLE IF EXISTS themes;
DROP TABLE IF EXISTS books;
`

// bookColumns lists the writable book columns in the order used by
// bookValues and scanBook.
var bookColumns = []string{
	"isbn", "isbn13", "openlibrary_key",
	"title", "subtitle", "author", "additional_authors", "translator",
	"year_published", "original_year", "language", "original_language",
	"publisher", "page_count", "format",
	"cover_url", "summary",
	"reading_status", "date_started", "date_read", "year_read", "reread",
	"is_recommended", "my_notes", "my_summary", "reading_context",
	"series_name", "series_position",
}
