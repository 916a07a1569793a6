package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

type analyzeResponse struct {
	Items []struct {
		Word          string   `json:"word"`
		CorrectedWord *string  `json:"corrected_word"`
		MeaningKo     *string  `json:"meaning_ko"`
		Confidence    *float64 `json:"confidence"`
	} `json:"items"`
}

// Analyze reads one image and returns the structured word records the model
// found in it. Records with a blank word are skipped; shape validation is left
// to the caller.
func (c *Client) Analyze(ctx context.Context, img provider.Image) ([]provider.RecognizedItem, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("vision: analyze %q: empty image", img.Name)
	}

	raw, err := c.complete(ctx, analyzeSystem, analyzePrompt, []provider.Image{img})
	if err != nil {
		return nil, fmt.Errorf("vision: analyze %q: %w", img.Name, err)
	}

	var resp analyzeResponse
	if err := decodeReply(raw, &resp); err != nil {
		return nil, fmt.Errorf("vision: analyze %q: %w", img.Name, err)
	}

	items := make([]provider.RecognizedItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		word := strings.TrimSpace(it.Word)
		if word == "" {
			continue
		}
		items = append(items, provider.RecognizedItem{
			Word:          word,
			CorrectedWord: trimmed(it.CorrectedWord),
			MeaningKo:     domain.NormalizeMeaning(it.MeaningKo),
			Confidence:    it.Confidence,
		})
	}

	c.log.DebugContext(ctx, "vision analyze",
		slog.String("image", img.Name),
		slog.Int("items", len(items)),
	)
	return items, nil
}

func decodeReply(raw string, v any) error {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
