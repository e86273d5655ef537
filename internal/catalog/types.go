// Package catalog holds the domain types of the reading catalog and the small
// normalisation helpers shared by the importers, the store and the enricher.
package catalog

// Reading statuses accepted by the catalog.
const (
	StatusRead       = "read"
	StatusReading    = "reading"
	StatusWantToRead = "want-to-read"
	StatusAbandoned  = "abandoned"
)

// Book formats accepted by the catalog.
const (
	FormatPhysical  = "physical"
	FormatEbook     = "ebook"
	FormatAudiobook = "audiobook"
)

// Link types accepted by the catalog.
const (
	LinkInternal = "internal"
	LinkExternal = "external"
	LinkPurchase = "purchase"
	LinkReview   = "review"
	LinkAuthor   = "author"
)

// Book is one catalog record. Empty strings and zero numbers mean "not set".
type Book struct {
	ID int64 `json:"id"`

	// Identifiers
	ISBN           string `json:"isbn,omitempty"`
	ISBN13         string `json:"isbn13,omitempty"`
	OpenLibraryKey string `json:"openlibrary_key,omitempty"`

	// Core metadata
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle,omitempty"`
	Author            string `json:"author,omitempty"`
	AdditionalAuthors string `json:"additional_authors,omitempty"`
	Translator        string `json:"translator,omitempty"`
	YearPublished     int    `json:"year_published,omitempty"`
	OriginalYear      int    `json:"original_year,omitempty"`
	Language          string `json:"language,omitempty"`
	OriginalLanguage  string `json:"original_language,omitempty"`

	// Edition details
	Publisher string `json:"publisher,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	Format    string `json:"format,omitempty"`

	// Enriched from external APIs
	CoverURL string `json:"cover_url,omitempty"`
	Summary  string `json:"summary,omitempty"`

	// Reading record
	ReadingStatus string `json:"reading_status"`
	DateStarted   string `json:"date_started,omitempty"`
	DateRead      string `json:"date_read,omitempty"`
	YearRead      int    `json:"year_read,omitempty"`
	Reread        int    `json:"reread,omitempty"`

	// Assessment
	IsRecommended  bool   `json:"is_recommended"`
	MyNotes        string `json:"my_notes,omitempty"`
	MySummary      string `json:"my_summary,omitempty"`
	ReadingContext string `json:"reading_context,omitempty"`

	// Series
	SeriesName     string  `json:"series_name,omitempty"`
	SeriesPosition float64 `json:"series_position,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`

	// Populated separately from the join tables
	Themes []string `json:"themes,omitempty"`
	Links  []Link   `json:"links,omitempty"`
}

// Identifier returns the ISBN used for lookups, preferring ISBN-13.
func (b *Book) Identifier() string {
	if b.ISBN13 != "" {
		return b.ISBN13
	}
	return b.ISBN
}

// HasTheme reports whether the book is tagged with slug.
func (b *Book) HasTheme(slug string) bool {
	for _, t := range b.Themes {
		if t == slug {
			return true
		}
	}
	return false
}

// Theme is a curated category books can be tagged with.
type Theme struct {
	ID           int64  `json:"id" yaml:"-"`
	Name         string `json:"name" yaml:"name"`
	Slug         string `json:"slug" yaml:"slug"`
	Description  string `json:"description,omitempty" yaml:"description"`
	DisplayOrder int    `json:"display_order,omitempty" yaml:"display_order"`
}

// ThemeCount is a theme together with the number of books tagged with it.
type ThemeCount struct {
	Theme
	BookCount int `json:"book_count"`
}

// Link is an external or internal reference attached to a book.
type Link struct {
	ID     int64  `json:"id"`
	BookID int64  `json:"book_id"`
	Type   string `json:"link_type"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// ValidStatus reports whether s is a known reading status.
func ValidStatus(s string) bool {
	switch s {
	case StatusRead, StatusReading, StatusWantToRead, StatusAbandoned:
		return true
	}
	return false
}

// ValidFormat reports whether f is a known book format.
func ValidFormat(f string) bool {
	switch f {
	case FormatPhysical, FormatEbook, FormatAudiobook:
		return true
	}
	return false
}

// ValidLinkType reports whether t is a known link type.
func ValidLinkType(t string) bool {
	switch t {
	case LinkInternal, LinkExternal, LinkPurchase, LinkReview, LinkAuthor:
		return true
	}
	return false
}
