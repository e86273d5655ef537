package catalog

import (
	"strings"
	"unicode"
)

// NormalizeISBN strips everything except digits and X and splits the result
// into its ISBN-10 and ISBN-13 slots. Values of any other length are stored in
// both slots as-is.
func NormalizeISBN(raw string) (isbn10, isbn13 string) {
	cleaned := strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= '0' && r <= '9') || r == 'X' {
			return r
		}
		return -1
	}, raw)

	switch len(cleaned) {
	case 0:
		return "", ""
	case 10:
		return cleaned, ""
	case 13:
		return "", cleaned
	default:
		return cleaned, cleaned
	}
}

// CleanSpreadsheetISBN removes the ="..." wrapper Goodreads puts around ISBN cells.
func CleanSpreadsheetISBN(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, `="`, "")
	value = strings.ReplaceAll(value, `"`, "")
	return value
}
