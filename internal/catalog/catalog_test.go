package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantISBN10 string
		wantISBN13 string
	}{
		{name: "isbn13 with hyphens", input: "978-0-374-52925-3", wantISBN13: "9780374529253"},
		{name: "isbn10 with x", input: "0-8044-2957-x", wantISBN10: "080442957X"},
		{name: "odd length kept in both", input: "12345", wantISBN10: "12345", wantISBN13: "12345"},
		{name: "empty", input: " - ", wantISBN10: "", wantISBN13: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isbn10, isbn13 := NormalizeISBN(tt.input)
			assert.Equal(t, tt.wantISBN10, isbn10)
			assert.Equal(t, tt.wantISBN13, isbn13)
		})
	}
}

func TestCleanSpreadsheetISBN(t *testing.T) {
	assert.Equal(t, "0374529256", CleanSpreadsheetISBN(`="0374529256"`))
	assert.Equal(t, "", CleanSpreadsheetISBN(`=""`))
	assert.Equal(t, "9780374529253", CleanSpreadsheetISBN(" 9780374529253 "))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "climate-technology", Slugify("Climate Technology"))
	assert.Equal(t, "politics--economics", Slugify("Politics & Economics"))
	assert.Equal(t, "bolano", Slugify("Bolaño"))
	assert.Equal(t, "sci-fi", Slugify("  sci-fi!  "))
}

func TestFoldTitle(t *testing.T) {
	assert.Equal(t, FoldTitle("The Savage Detectives"), FoldTitle("  the SAVAGE detectives "))
	assert.NotEqual(t, FoldTitle("2666"), FoldTitle("2667"))
}

func TestBookIdentifier(t *testing.T) {
	b := Book{ISBN: "0374529256", ISBN13: "9780374529253"}
	assert.Equal(t, "9780374529253", b.Identifier())

	b.ISBN13 = ""
	assert.Equal(t, "0374529256", b.Identifier())

	b.ISBN = ""
	assert.Empty(t, b.Identifier())
}

func TestDefaultThemes(t *testing.T) {
	themes, err := DefaultThemes()
	require.NoError(t, err)
	require.Len(t, themes, 10)
	assert.Equal(t, "fiction", themes[0].Slug)
	assert.Equal(t, 1, themes[0].DisplayOrder)
	assert.Equal(t, "travel", themes[9].Slug)
}

func TestParseThemes(t *testing.T) {
	themes, err := ParseThemes([]byte("- name: Climate Tech\n- name: Art\n  slug: Visual Art\n"))
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "climate-tech", themes[0].Slug)
	assert.Equal(t, "visual-art", themes[1].Slug)

	_, err = ParseThemes([]byte("- slug: nameless\n"))
	require.Error(t, err)

	_, err = ParseThemes([]byte("not: [valid"))
	require.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidStatus(StatusWantToRead))
	assert.False(t, ValidStatus("finished"))
	assert.True(t, ValidFormat(FormatEbook))
	assert.False(t, ValidFormat("scroll"))
	assert.True(t, ValidLinkType(LinkPurchase))
	assert.False(t, ValidLinkType("podcast"))
}
