package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle prepares a page title for storage and comparison:
//   - applies Unicode NFC so visually equal titles compare equal
//   - trims leading/trailing whitespace and underscores
//   - turns runs of spaces and underscores into a single underscore
//   - upper-cases the first letter
func NormalizeTitle(title string) string {
	title = norm.NFC.String(title)
	title = strings.Trim(title, " \t\n_")
	if title == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(title))
	prevSep := false
	for _, r := range title {
		if r == ' ' || r == '_' || r == '\t' {
			if prevSep {
				continue
			}
			prevSep = true
			b.WriteRune('_')
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}

	out := b.String()
	first, size := utf8.DecodeRuneInString(out)
	if unicode.IsLower(first) {
		return string(unicode.ToUpper(first)) + out[size:]
	}
	return out
}
