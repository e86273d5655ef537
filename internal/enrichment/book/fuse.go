package book

import (
	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

// Enrichable field names reported in Outcome.Found.
const (
	FieldCover     = "cover"
	FieldSummary   = "summary"
	FieldPageCount = "page_count"
	FieldPublisher = "publisher"
)

type needs struct {
	cover, summary, pageCount, publisher bool
}

func needsFor(b *catalog.Book, force bool) needs {
	return needs{
		cover:     force || b.CoverURL == "",
		summary:   force || b.Summary == "",
		pageCount: force || b.PageCount <= 0,
		publisher: force || b.Publisher == "",
	}
}

func (n needs) any() bool {
	return n.cover || n.summary || n.pageCount || n.publisher
}

func (n needs) fields() []string {
	var fields []string
	if n.cover {
		fields = append(fields, FieldCover)
	}
	if n.summary {
		fields = append(fields, FieldSummary)
	}
	if n.pageCount {
		fields = append(fields, FieldPageCount)
	}
	if n.publisher {
		fields = append(fields, FieldPublisher)
	}
	return fields
}

// MissingFields lists the enrichable fields a run would try to fill for b.
func MissingFields(b *catalog.Book, force bool) []string {
	return needsFor(b, force).fields()
}

// fuse writes the first non-empty candidate of every needed field into b.
// It returns the fields a value was found for and whether b changed.
func fuse(b *catalog.Book, n needs, src sources) (found []string, changed bool) {
	rec, work, vol := src.record, src.work, src.volume

	if n.cover {
		var candidates []string
		if rec != nil {
			candidates = append(candidates, rec.CoverURL)
		}
		if vol != nil {
			candidates = append(candidates, vol.CoverURL)
		}
		if v := firstString(candidates...); v != "" {
			found = append(found, FieldCover)
			changed = setString(&b.CoverURL, v) || changed
		}
	}

	if n.summary {
		var candidates []string
		if work != nil {
			candidates = append(candidates, work.Description)
		}
		if vol != nil {
			candidates = append(candidates, vol.Description)
		}
		if v := firstString(candidates...); v != "" {
			found = append(found, FieldSummary)
			changed = setString(&b.Summary, v) || changed
		}
	}

	if n.pageCount {
		var candidates []int
		if rec != nil {
			candidates = append(candidates, rec.PageCount)
		}
		if vol != nil {
			candidates = append(candidates, vol.PageCount)
		}
		if v := firstInt(candidates...); v > 0 {
			found = append(found, FieldPageCount)
			if b.PageCount != v {
				b.PageCount = v
				changed = true
			}
		}
	}

	if n.publisher {
		var candidates []string
		if rec != nil {
			candidates = append(candidates, rec.Publisher)
		}
		if vol != nil {
			candidates = append(candidates, vol.Publisher)
		}
		if v := firstString(candidates...); v != "" {
			found = append(found, FieldPublisher)
			changed = setString(&b.Publisher, v) || changed
		}
	}

	// The provider key is remembered once and never replaced.
	if rec != nil && b.OpenLibraryKey == "" && rec.Key != "" {
		b.OpenLibraryKey = rec.Key
		changed = true
	}

	return found, changed
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func setString(dst *string, v string) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}
