package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)

// stripMarks removes combining diacritics after NFD decomposition.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify lowercases s, turns spaces into hyphens and drops anything outside
// [a-z0-9-]. Accented letters are folded to their base letter first.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(stripMarks(s)))
	s = strings.ReplaceAll(s, " ", "-")
	return slugInvalid.ReplaceAllString(s, "")
}

// FoldTitle returns a comparison key for duplicate detection.
func FoldTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}
