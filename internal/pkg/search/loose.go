// Package search builds loose matching patterns for free-text catalog
// search: matching tolerant of spacing, hyphenation and apostrophes
// between the letters of a term, so "tshirt", "t shirt" and "t-shirt"
// all match one another.
package search

import "strings"

// wordStart anchors the pattern at the beginning of a word. POSIX ARE
// syntax as understood by the Postgres ~* operator.
const wordStart = `\m`

// separator matches any run of space, hyphen or apostrophe between two
// letters of the term.
const separator = `[-' ]*`

// suffix tolerates a trailing possessive or plural ending ('s, s, ').
const suffix = `('?s?)?`

// BuildLoosePattern turns a free-text term into a case-insensitive loose
// matching pattern usable with the Postgres ~* operator. Characters that
// are not letters or digits are stripped, the remaining characters may be
// separated by spaces, hyphens or apostrophes in the matched text, and a
// trailing possessive/plural suffix is optional. An empty or fully
// stripped term yields the empty pattern, which matches everything.
func BuildLoosePattern(term string) string {
	letters := stripNonAlphanumeric(term)
	if len(letters) == 0 {
		return ""
	}

	escaped := make([]string, len(letters))
	for i, r := range letters {
		escaped[i] = escapeRegex(string(r))
	}

	return wordStart + strings.Join(escaped, separator) + suffix
}

func stripNonAlphanumeric(term string) []rune {
	var letters []rune
	for _, r := range term {
		if isAlphanumeric(r) {
			letters = append(letters, r)
		}
	}
	return letters
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// escapeRegex escapes regex metacharacters so the character is matched
// literally. Stripping already removes these, but escaping keeps the
// builder safe should the stripping rules ever loosen.
func escapeRegex(s string) string {
	if strings.ContainsAny(s, `.*+?^${}()|[]\`) {
		return `\` + s
	}
	return s
}
