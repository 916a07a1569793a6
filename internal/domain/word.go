package domain

import (
	"regexp"
	"strings"
)

// DefaultMinWordLength is the shortest accepted word when no length is configured.
const DefaultMinWordLength = 2

var wordPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z']*$`)

// IsValidWord reports whether w starts with a letter, contains only letters and
// apostrophes, and is at least minLength bytes long. A non-positive minLength
// falls back to DefaultMinWordLength.
func IsValidWord(w string, minLength int) bool {
	if minLength <= 0 {
		minLength = DefaultMinWordLength
	}
	if w == "" || !wordPattern.MatchString(w) {
		return false
	}
	return len(w) >= minLength
}

// ApplyCase normalizes w according to mode. Unknown modes pass through.
func ApplyCase(w string, mode CaseMode) string {
	switch mode {
	case CaseLower:
		return strings.ToLower(w)
	case CaseUpper:
		return strings.ToUpper(w)
	default:
		return w
	}
}
