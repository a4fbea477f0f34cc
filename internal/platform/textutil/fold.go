package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder strips combining marks so "José" and "jose" compare equal.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldForSearch lowercases and removes accents, producing the canonical form
// used for free-text matching.
func FoldForSearch(value string) string {
	folded, _, err := transform.String(accentFolder, value)
	if err != nil {
		folded = value
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Digits keeps only ASCII digits, used for phone numbers and postal codes.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
