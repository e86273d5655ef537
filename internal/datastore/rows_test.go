package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

type embedded struct {
	Slug string `json:"slug"`
}

type rowFixture struct {
	embedded
	ID      int64          `json:"id"`
	Title   string         `json:"title,omitempty"`
	Themes  []string       `json:"themes"`
	Links   []catalog.Link `json:"links"`
	Skipped string         `json:"-"`
	Plain   int
	hidden  string
}

func TestRowFromStruct(t *testing.T) {
	row := RowFromStruct(rowFixture{
		embedded: embedded{Slug: "dune"},
		ID:       7,
		Title:    "Dune",
		Themes:   []string{"scifi", "classics"},
		Links:    []catalog.Link{{URL: "https://example.com"}},
		Skipped:  "x",
		Plain:    3,
		hidden:   "y",
	}, RowOptions{JoinStringSlices: true})

	assert.Equal(t, map[string]any{
		"slug":   "dune",
		"id":     int64(7),
		"title":  "Dune",
		"themes": "scifi,classics",
		"plain":  3,
	}, row)
}

func TestRowFromStructOmit(t *testing.T) {
	row := RowFromStruct(&rowFixture{ID: 1, Themes: []string{"a"}}, RowOptions{Omit: map[string]bool{"title": true}})

	assert.NotContains(t, row, "title")
	assert.NotContains(t, row, "themes", "string slices are dropped unless joined")
	assert.Equal(t, int64(1), row["id"])
}

func TestRowFromStructNilPointer(t *testing.T) {
	var f *rowFixture
	assert.Empty(t, RowFromStruct(f, RowOptions{}))
}
