package rest

import (
	"strings"

	"github.com/heartmarshall/vocabscan/internal/domain"
)

// entryJSON is the wire form of an entry. LowConfidence is computed on the
// way out and ignored on the way in.
type entryJSON struct {
	Word          string   `json:"word"`
	CorrectedWord string   `json:"correctedWord"`
	MeaningKo     *string  `json:"meaningKo,omitempty"`
	PartOfSpeech  string   `json:"partOfSpeech,omitempty"`
	Example       string   `json:"example,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
	Source        string   `json:"source,omitempty"`
	LowConfidence bool     `json:"lowConfidence"`
}

type entriesRequest struct {
	Entries []entryJSON `json:"entries"`
}

func toEntryJSON(entries []domain.Entry, threshold float64) []entryJSON {
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{
			Word:          e.Word,
			CorrectedWord: e.CorrectedWord,
			MeaningKo:     e.MeaningKo,
			PartOfSpeech:  e.PartOfSpeech,
			Example:       e.Example,
			Confidence:    e.Confidence,
			Source:        e.Source.String(),
			LowConfidence: e.IsLowConfidence(threshold),
		}
	}
	return out
}

// toDomainEntries validates client-edited entries. Entries without a source
// are treated as OCR output; confidence is clamped into [0,1].
func toDomainEntries(in []entryJSON) ([]domain.Entry, error) {
	var errs []domain.FieldError
	out := make([]domain.Entry, 0, len(in))

	for _, e := range in {
		src := domain.Source(strings.TrimSpace(e.Source))
		if src == "" {
			src = domain.SourceImageOCR
		}
		if !src.IsValid() {
			errs = append(errs, domain.FieldError{Field: "entries.source", Message: "must be image-ocr or image-ai"})
			continue
		}

		var conf *float64
		if e.Confidence != nil {
			conf = domain.Float64Ptr(domain.ClampConfidence(*e.Confidence))
		}

		out = append(out, domain.Entry{
			Word:          strings.TrimSpace(e.Word),
			CorrectedWord: strings.TrimSpace(e.CorrectedWord),
			MeaningKo:     domain.NormalizeMeaning(e.MeaningKo),
			PartOfSpeech:  strings.TrimSpace(e.PartOfSpeech),
			Example:       strings.TrimSpace(e.Example),
			Confidence:    conf,
			Source:        src,
		})
	}

	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	return out, nil
}
