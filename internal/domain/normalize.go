package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares text for comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Apostrophes and hyphens are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeMeaning trims a meaning and recomposes it to NFC, so Hangul syllables
// emitted as separate jamo by some recognizers compare equal to typed text.
// Blank input yields nil (meaning unknown).
func NormalizeMeaning(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(norm.NFC.String(*s))
	if t == "" {
		return nil
	}
	return &t
}
