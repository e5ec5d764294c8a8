// Package slug generates URL-safe identifiers from post and category titles.
// Titles are mostly Serbian, so transliteration has to handle Cyrillic as well
// as Latin diacritics before the usual lowercase-and-hyphenate pass.
package slug

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Make converts a title to a URL-friendly slug: transliterates to ASCII,
// lowercases, replaces whitespace with hyphens and strips everything else.
func Make(s string) string {
	result := unidecode.Unidecode(s)
	result = strings.ToLower(result)
	result = strings.Join(strings.Fields(result), "-")
	result = invalidChars.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValid reports whether s is already in canonical slug form.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}
