// Package parser turns raw OCR text into candidate vocabulary entries.
package parser

import (
	"regexp"
	"strings"

	"github.com/heartmarshall/vocabscan/internal/domain"
)

// pairSeparator splits "word - meaning" style lines. Arrow and tab split
// anywhere; hyphen, em-dash, colon and equals only next to whitespace, so
// "well-known" and "o'clock" stay whole.
var pairSeparator = regexp.MustCompile(`\s*->\s*|\s*\t\s*|\s[-—:=]\s|[-—:=]\s|\s[-—:=]`)

// tokenSeparator splits a line without a pair separator into word candidates.
var tokenSeparator = regexp.MustCompile(`[^A-Za-z']+`)

// ParseLines converts raw recognized text into entries in input order.
// Candidates that fail word validation after case normalization are dropped.
// No deduplication happens here.
func ParseLines(raw string, minLength int, mode domain.CaseMode) []domain.Entry {
	var entries []domain.Entry

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		if word, meaning, ok := splitPair(line); ok {
			word = domain.ApplyCase(word, mode)
			if domain.IsValidWord(word, minLength) {
				entries = append(entries, newEntry(word, meaning))
			}
			continue
		}

		for _, tok := range tokenSeparator.Split(line, -1) {
			if tok == "" {
				continue
			}
			tok = domain.ApplyCase(tok, mode)
			if domain.IsValidWord(tok, minLength) {
				entries = append(entries, newEntry(tok, ""))
			}
		}
	}

	return entries
}

// splitPair splits line on the first matching separators. The word is the
// first field; the meaning is the remaining fields joined with " - ".
func splitPair(line string) (word, meaning string, ok bool) {
	fields := pairSeparator.Split(line, -1)
	if len(fields) < 2 {
		return "", "", false
	}
	rest := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		rest = append(rest, strings.TrimSpace(f))
	}
	return strings.TrimSpace(fields[0]), strings.TrimSpace(strings.Join(rest, " - ")), true
}

func newEntry(word, meaning string) domain.Entry {
	return domain.Entry{
		Word:          word,
		CorrectedWord: word,
		MeaningKo:     domain.NormalizeMeaning(&meaning),
		Source:        domain.SourceImageOCR,
	}
}
