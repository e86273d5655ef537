package openlibrary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CoverURLTemplate formats a numeric cover id into a large cover image URL.
const CoverURLTemplate = "https://covers.openlibrary.org/b/id/%d-L.jpg"

// Shape tells which endpoint a Record was decoded from. The two endpoints
// name the cover id, work key and publisher fields differently.
type Shape string

const (
	// ShapeEdition is a direct edition lookup (/isbn/{isbn}.json).
	ShapeEdition Shape = "edition"
	// ShapeSearchResult is the first document of /search.json.
	ShapeSearchResult Shape = "search_result"
)

// Record is the normalized result of an edition lookup or a search. Long
// descriptions are only read from the work resource.
type Record struct {
	Shape     Shape  `json:"shape"`
	Key       string `json:"key,omitempty"`
	WorkKey   string `json:"work_key,omitempty"`
	Title     string `json:"title,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	Publisher string `json:"publisher,omitempty"`
}

// Work is the normalized work resource, which holds the long description.
type Work struct {
	Key         string `json:"key"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// editionResponse is the raw /isbn/{isbn}.json payload.
type editionResponse struct {
	Key           string            `json:"key"`
	Title         string            `json:"title"`
	Covers        []int             `json:"covers"`
	NumberOfPages int               `json:"number_of_pages"`
	Publishers    []json.RawMessage `json:"publishers"`
	Works         []struct {
		Key string `json:"key"`
	} `json:"works"`
}

// searchResponse is the raw /search.json payload.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	CoverI              int      `json:"cover_i"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Publisher           []string `json:"publisher"`
}

// workResponse is the raw {workKey}.json payload.
type workResponse struct {
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Description json.RawMessage `json:"description"`
}

func (e *editionResponse) record() *Record {
	r := &Record{
		Shape:     ShapeEdition,
		Key:       e.Key,
		Title:     e.Title,
		CoverURL:  coverURL(e.Covers, 0),
		PageCount: positive(e.NumberOfPages),
		Publisher: firstPublisher(e.Publishers),
	}
	if len(e.Works) > 0 {
		r.WorkKey = e.Works[0].Key
	}
	return r
}

func (d *searchDoc) record() *Record {
	r := &Record{
		Shape:     ShapeSearchResult,
		Key:       d.Key,
		WorkKey:   d.Key,
		Title:     d.Title,
		CoverURL:  coverURL(nil, d.CoverI),
		PageCount: positive(d.NumberOfPagesMedian),
	}
	for _, p := range d.Publisher {
		if p = strings.TrimSpace(p); p != "" {
			r.Publisher = p
			break
		}
	}
	return r
}

func (w *workResponse) work() *Work {
	return &Work{
		Key:         w.Key,
		Title:       w.Title,
		Description: description(w.Description),
	}
}

// coverURL prefers the first usable id of the covers list over the single
// cover_i id. OpenLibrary uses -1 for a removed cover.
func coverURL(covers []int, coverI int) string {
	for _, id := range covers {
		if id > 0 {
			return fmt.Sprintf(CoverURLTemplate, id)
		}
	}
	if coverI > 0 {
		return fmt.Sprintf(CoverURLTemplate, coverI)
	}
	return ""
}

// description accepts either a plain string or a {"type": ..., "value": ...}
// text object.
func description(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Value)
	}
	return ""
}

// firstPublisher returns the first publisher, whose element may be a plain
// string or an object with a name.
func firstPublisher(publishers []json.RawMessage) string {
	if len(publishers) == 0 {
		return ""
	}
	raw := publishers[0]

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Name)
	}
	return ""
}

func positive(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
