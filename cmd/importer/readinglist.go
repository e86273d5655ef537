package importer

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/lepinkainen/bookcatalog/internal/csvutil"
)

// themeKeywords maps theme slugs to subject keywords that suggest them.
var themeKeywords = []struct {
	slug     string
	keywords []string
}{
	{"fiction", []string{"fiction", "novels", "short stories", "literary"}},
	{"history", []string{"history", "ancient", "medieval", "modern", "19th century", "20th century"}},
	{"philosophy", []string{"philosophy", "ethics", "critical theory"}},
	{"religion", []string{"religion", "theology", "christianity", "spirituality", "religious"}},
	{"politics-economics", []string{"political science", "economics", "politics", "economic", "finance"}},
	{"science-technology", []string{"science", "technology", "engineering", "biology", "physics"}},
	{"biography", []string{"biography", "memoir", "autobiograph"}},
	{"essays-lectures", []string{"essays", "lectures", "literary collections"}},
}

// GuessThemes matches a subjects cell against the keyword table.
func GuessThemes(subjects string) []string {
	subjects = strings.ToLower(subjects)
	if subjects == "" {
		return nil
	}

	var matched []string
	for _, entry := range themeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(subjects, keyword) {
				matched = append(matched, entry.slug)
				break
			}
		}
	}
	return matched
}

// FlipAuthorName turns "Last, First" into "First Last". Multiple authors are
// separated by semicolons.
func FlipAuthorName(author string) string {
	if author == "" {
		return ""
	}
	var flipped []string
	for _, a := range strings.Split(author, ";") {
		a = strings.TrimSpace(a)
		if last, first, ok := strings.Cut(a, ","); ok {
			a = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
		}
		flipped = append(flipped, a)
	}
	return strings.Join(flipped, "; ")
}

var readingListHeader = []string{
	"title", "subtitle", "author", "isbn13", "year_published",
	"date_read", "page_count", "publisher", "summary", "themes", "notes",
}

// ReadingList converts a Reading List app export into the generic import
// format, keeping only finished books. It returns how many rows were written.
func ReadingList(input, output string, w io.Writer) (int, error) {
	total := 0
	rows, err := csvutil.ProcessCSV(input, func(r csvutil.Row) ([]string, error) {
		total++
		if r.Get("Finished Reading") == "" {
			return nil, csvutil.ErrSkipRow
		}
		return []string{
			r.Get("Title"),
			r.Get("Subtitle"),
			FlipAuthorName(r.Get("Authors")),
			r.Get("ISBN-13"),
			"",
			r.Get("Finished Reading"),
			r.Get("Page Count"),
			r.Get("Publisher"),
			r.Get("Description"),
			strings.Join(GuessThemes(r.Get("Subjects")), ","),
			r.Get("Notes"),
		}, nil
	}, csvutil.ProcessorOptions{})
	if err != nil {
		return 0, err
	}
	_, _ = fmt.Fprintf(w, "Found %d finished books out of %d total\n", len(rows), total)

	if err := csvutil.WriteCSV(output, readingListHeader, rows); err != nil {
		return 0, err
	}
	_, _ = fmt.Fprintf(w, "Wrote %d books to %s\n", len(rows), output)

	counts := map[string]int{}
	for _, row := range rows {
		for _, slug := range splitThemes(row[9]) {
			counts[slug]++
		}
	}
	slugs := make([]string, 0, len(counts))
	for slug := range counts {
		slugs = append(slugs, slug)
	}
	slices.SortFunc(slugs, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	if len(slugs) > 0 {
		_, _ = fmt.Fprintln(w, "\nTheme distribution:")
		for _, slug := range slugs {
			_, _ = fmt.Fprintf(w, "  %s: %d\n", slug, counts[slug])
		}
	}
	return len(rows), nil
}
