package domain

import "strings"

// DefaultLowConfidenceThreshold is the confidence below which an entry is
// flagged for review and, for AI-sourced entries, sent to the recheck pass.
const DefaultLowConfidenceThreshold = 0.85

// TranslationFallbackMarker is appended to an untranslated English definition
// when the translation provider fails, so the user can tell it apart from a
// real Korean meaning.
const TranslationFallbackMarker = " (번역 필요)"

// Entry is one vocabulary record tracked through a single extraction session.
type Entry struct {
	Word          string   `json:"word"`
	CorrectedWord string   `json:"correctedWord"`
	MeaningKo     *string  `json:"meaningKo,omitempty"`
	PartOfSpeech  string   `json:"partOfSpeech,omitempty"`
	Example       string   `json:"example,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Source        Source   `json:"source"`
}

// Key returns the dedupe key: the lowercase corrected word, or the lowercase
// word when no correction is present.
func (e Entry) Key() string {
	if k := NormalizeText(e.CorrectedWord); k != "" {
		return k
	}
	return NormalizeText(e.Word)
}

// Spelling returns the best known spelling of the entry.
func (e Entry) Spelling() string {
	if s := strings.TrimSpace(e.CorrectedWord); s != "" {
		return s
	}
	return strings.TrimSpace(e.Word)
}

// HasMeaning reports whether the entry carries a non-blank meaning.
func (e Entry) HasMeaning() bool {
	return e.MeaningKo != nil && strings.TrimSpace(*e.MeaningKo) != ""
}

// Meaning returns the meaning text or "" when absent.
func (e Entry) Meaning() string {
	if e.MeaningKo == nil {
		return ""
	}
	return *e.MeaningKo
}

// IsLowConfidence reports whether the entry should be reviewed.
// An unscored entry is always low.
func (e Entry) IsLowConfidence(threshold float64) bool {
	return e.Confidence == nil || *e.Confidence < threshold
}

// Clone returns a deep copy so pointer fields are never shared between stages.
func (e Entry) Clone() Entry {
	c := e
	if e.MeaningKo != nil {
		m := *e.MeaningKo
		c.MeaningKo = &m
	}
	if e.Confidence != nil {
		v := *e.Confidence
		c.Confidence = &v
	}
	return c
}

// CloneEntries deep-copies a slice of entries.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }

// ClampConfidence limits c to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
