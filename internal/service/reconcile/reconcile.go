// Package reconcile deduplicates and merges vocabulary entries under fixed
// field-precedence rules.
package reconcile

import (
	"strings"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

// Merge collapses entries sharing a dedupe key into one survivor per key, in
// first-seen order. The first entry for a key is the prior record:
//   - word, correctedWord and source: prior wins
//   - meaning, partOfSpeech, example: prior unless empty
//   - confidence: the maximum; an absent value loses to any present one
//
// Input entries are not modified.
func Merge(entries []domain.Entry) []domain.Entry {
	if len(entries) == 0 {
		return []domain.Entry{}
	}

	index := make(map[string]int, len(entries))
	out := make([]domain.Entry, 0, len(entries))

	for _, e := range entries {
		key := e.Key()
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, e.Clone())
			continue
		}
		mergeInto(&out[i], e)
	}
	return out
}

// MergeAIResult merges incoming entries into existing ones. Existing entries
// come first, so they are the prior records for any shared key.
func MergeAIResult(existing, incoming []domain.Entry) []domain.Entry {
	all := make([]domain.Entry, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)
	return Merge(all)
}

func mergeInto(prior *domain.Entry, incoming domain.Entry) {
	if !prior.HasMeaning() && incoming.HasMeaning() {
		m := *incoming.MeaningKo
		prior.MeaningKo = &m
	}
	if strings.TrimSpace(prior.PartOfSpeech) == "" {
		prior.PartOfSpeech = incoming.PartOfSpeech
	}
	if strings.TrimSpace(prior.Example) == "" {
		prior.Example = incoming.Example
	}
	if incoming.Confidence != nil && (prior.Confidence == nil || *incoming.Confidence > *prior.Confidence) {
		c := *incoming.Confidence
		prior.Confidence = &c
	}
}

// FromRecognizedItems maps structured vision records to image-ai entries.
// Words are case-normalized and validated like parsed words; a missing
// corrected word defaults to the word, and confidence is clamped to [0,1].
func FromRecognizedItems(items []provider.RecognizedItem, minLength int, mode domain.CaseMode) []domain.Entry {
	entries := make([]domain.Entry, 0, len(items))
	for _, it := range items {
		word := domain.ApplyCase(strings.TrimSpace(it.Word), mode)
		if !domain.IsValidWord(word, minLength) {
			continue
		}

		corrected := word
		if it.CorrectedWord != nil {
			c := domain.ApplyCase(strings.TrimSpace(*it.CorrectedWord), mode)
			if domain.IsValidWord(c, 1) {
				corrected = c
			}
		}

		var conf *float64
		if it.Confidence != nil {
			conf = domain.Float64Ptr(domain.ClampConfidence(*it.Confidence))
		}

		entries = append(entries, domain.Entry{
			Word:          word,
			CorrectedWord: corrected,
			MeaningKo:     domain.NormalizeMeaning(it.MeaningKo),
			Confidence:    conf,
			Source:        domain.SourceImageAI,
		})
	}
	return entries
}
