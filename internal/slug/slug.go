// Package slug derives URL-safe content identifiers from free text and
// resolves collisions against identifiers already in use.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[\s_-]+`)
)

// ToSlug lowercases and trims text, drops everything that is not a word
// character, whitespace or hyphen, collapses separator runs into a single
// hyphen and strips hyphens from both ends. Any Unicode space counts as
// whitespace. Input with no word characters yields "", which callers must
// reject.
func ToSlug(text string) string {
	s := strings.Map(foldSpace, strings.ToLower(text))
	s = strings.TrimSpace(s)
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// foldSpace maps whitespace outside ASCII \s (NBSP, \v, U+2003, U+3000) to a
// plain space so the separator pattern sees it.
func foldSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// ResolveUnique returns base when it is not in existing, otherwise the first
// of base-1, base-2, ... that is free. It does not coordinate with concurrent
// writers; the store's unique index is the real guarantee.
func ResolveUnique(base string, existing map[string]struct{}) string {
	if _, taken := existing[base]; !taken {
		return base
	}

	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// SetOf builds the lookup set used by ResolveUnique.
func SetOf(slugs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		set[s] = struct{}{}
	}
	return set
}
