package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/vocabscan/internal/provider"
)

type recheckResponse struct {
	Items []struct {
		Word          string   `json:"word"`
		CorrectedWord string   `json:"corrected_word"`
		Confidence    *float64 `json:"confidence"`
	} `json:"items"`
}

// Recheck asks the model to re-verify words against all images in a single
// call. Items are returned as reported; matching them to entries is the
// caller's job.
func (c *Client) Recheck(ctx context.Context, words []string, images []provider.Image) ([]provider.RecheckItem, error) {
	if len(words) == 0 {
		return nil, nil
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("vision: recheck: no images")
	}

	raw, err := c.complete(ctx, recheckSystem, buildRecheckPrompt(words), images)
	if err != nil {
		return nil, fmt.Errorf("vision: recheck: %w", err)
	}

	var resp recheckResponse
	if err := decodeReply(raw, &resp); err != nil {
		return nil, fmt.Errorf("vision: recheck: %w", err)
	}

	items := make([]provider.RecheckItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		word := strings.TrimSpace(it.Word)
		if word == "" {
			continue
		}
		items = append(items, provider.RecheckItem{
			Word:          word,
			CorrectedWord: strings.TrimSpace(it.CorrectedWord),
			Confidence:    it.Confidence,
		})
	}

	c.log.DebugContext(ctx, "vision recheck",
		slog.Int("requested", len(words)),
		slog.Int("returned", len(items)),
	)
	return items, nil
}
