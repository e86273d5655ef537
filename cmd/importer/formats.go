package importer

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Format identifies which export a CSV file came from.
type Format string

const (
	FormatGoodreads  Format = "goodreads"
	FormatStoryGraph Format = "storygraph"
	FormatGeneric    Format = "generic"
)

// Catalog fields a column map can fill.
const (
	colTitle         = "title"
	colSubtitle      = "subtitle"
	colAuthor        = "author"
	colISBN          = "isbn"
	colISBN13        = "isbn13"
	colYearPublished = "year_published"
	colDateRead      = "date_read"
	colYearRead      = "year_read"
	colNotes         = "my_notes"
	colPageCount     = "page_count"
	colPublisher     = "publisher"
	colSummary       = "summary"
	colRecommended   = "is_recommended"
	colThemes        = "themes"
)

var columnMaps = map[Format]map[string]string{
	FormatGoodreads: {
		colTitle:         "Title",
		colAuthor:        "Author",
		colISBN:          "ISBN",
		colISBN13:        "ISBN13",
		colYearPublished: "Original Publication Year",
		colDateRead:      "Date Read",
		colNotes:         "My Review",
		colPageCount:     "Number of Pages",
		colPublisher:     "Publisher",
	},
	FormatStoryGraph: {
		colTitle:    "Title",
		colAuthor:   "Authors",
		colISBN:     "ISBN/UID",
		colDateRead: "Last Date Read",
	},
	FormatGeneric: {
		colTitle:         "title",
		colSubtitle:      "subtitle",
		colAuthor:        "author",
		colISBN:          "isbn",
		colISBN13:        "isbn13",
		colYearPublished: "year_published",
		colDateRead:      "date_read",
		colYearRead:      "year_read",
		colNotes:         "notes",
		colPageCount:     "page_count",
		colPublisher:     "publisher",
		colSummary:       "summary",
		colRecommended:   "recommended",
		colThemes:        "themes",
	},
}

// DetectFormat picks the export format from the header line.
func DetectFormat(headers []string) Format {
	switch {
	case slices.Contains(headers, "Book Id"):
		return FormatGoodreads
	case slices.Contains(headers, "Title") && slices.Contains(headers, "Authors"):
		return FormatStoryGraph
	default:
		return FormatGeneric
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
}

// parseDateRead returns the ISO date and the year of a date cell. Cells that
// hold only a year give an empty date.
func parseDateRead(value string) (string, int) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), t.Year()
		}
	}
	if year, err := strconv.Atoi(value); err == nil && year > 0 {
		return "", year
	}
	return "", 0
}

// parseYear accepts "1984" as well as spreadsheet floats like "1984.0".
func parseYear(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return int(f)
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseFlag treats true, yes, 1 and x as set.
func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1", "x":
		return true
	}
	return false
}

// splitThemes splits a comma separated theme cell.
func splitThemes(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
