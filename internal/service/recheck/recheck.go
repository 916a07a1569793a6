// Package recheck drives the second verification pass for low-confidence
// AI-sourced entries.
package recheck

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

type rechecker interface {
	Recheck(ctx context.Context, words []string, images []provider.Image) ([]provider.RecheckItem, error)
}

// State is the position of an entry collection in the verification protocol.
type State string

const (
	StateInitialPassComplete State = "initial-pass-complete"
	StateRecheckComplete     State = "recheck-complete"
)

// Status tells how a recheck pass ended.
type Status string

const (
	StatusSkipped Status = "skipped"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// Outcome summarizes one recheck pass.
type Outcome struct {
	State     State           `json:"state"`
	Status    Status          `json:"status"`
	Requested []string        `json:"requested,omitempty"`
	Updated   int             `json:"updated"`
	Unmatched int             `json:"unmatched"`
	Warning   *domain.Warning `json:"warning,omitempty"`
}

// Orchestrator issues at most one recheck call per pass and folds the
// corrections back into the entries.
type Orchestrator struct {
	log       *slog.Logger
	rechecker rechecker
	threshold float64
	timeout   time.Duration
}

// NewOrchestrator creates an Orchestrator. A non-positive threshold falls back
// to domain.DefaultLowConfidenceThreshold; a non-positive timeout disables the
// per-call deadline.
func NewOrchestrator(log *slog.Logger, rechecker rechecker, threshold float64, timeout time.Duration) *Orchestrator {
	if threshold <= 0 {
		threshold = domain.DefaultLowConfidenceThreshold
	}
	return &Orchestrator{
		log:       log.With("service", "recheck"),
		rechecker: rechecker,
		threshold: threshold,
		timeout:   timeout,
	}
}

// Threshold returns the confidence below which an entry is rechecked.
func (o *Orchestrator) Threshold() float64 { return o.threshold }

// Run rechecks the low-confidence words of entries against images.
// It never fails: when there is nothing to recheck the call is skipped, and
// when the rechecker fails the entries come back unmodified with a warning.
// The returned slice is a copy; entries is not modified.
func (o *Orchestrator) Run(ctx context.Context, entries []domain.Entry, images []provider.Image) ([]domain.Entry, Outcome) {
	out := domain.CloneEntries(entries)
	words := LowConfidenceWords(entries, o.threshold)

	if len(words) == 0 || o.rechecker == nil {
		return out, Outcome{State: StateRecheckComplete, Status: StatusSkipped}
	}

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	items, err := o.rechecker.Recheck(callCtx, words, images)
	if err != nil {
		o.log.WarnContext(ctx, "recheck failed, keeping initial pass",
			slog.Int("words", len(words)),
			slog.String("error", err.Error()),
		)
		return out, Outcome{
			State:     StateRecheckComplete,
			Status:    StatusFailed,
			Requested: words,
			Warning: &domain.Warning{
				Stage:   domain.StageRecheck,
				Message: "recheck failed; low-confidence words need manual review: " + err.Error(),
			},
		}
	}

	updated, unmatched := Apply(out, items)

	o.log.InfoContext(ctx, "recheck applied",
		slog.Int("requested", len(words)),
		slog.Int("updated", updated),
		slog.Int("unmatched", unmatched),
	)

	return out, Outcome{
		State:     StateRecheckComplete,
		Status:    StatusApplied,
		Requested: words,
		Updated:   updated,
		Unmatched: unmatched,
	}
}

// LowConfidenceWords returns the distinct original words of AI-sourced entries
// whose confidence is absent or below threshold. Duplicates are coalesced
// case-insensitively, keeping the first spelling seen.
func LowConfidenceWords(entries []domain.Entry, threshold float64) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, e := range entries {
		if e.Source != domain.SourceImageAI || !e.IsLowConfidence(threshold) {
			continue
		}
		w := strings.TrimSpace(e.Word)
		if w == "" {
			continue
		}
		k := strings.ToLower(w)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		words = append(words, w)
	}
	return words
}

// Apply writes recheck items into entries in place. Each item goes to the
// first entry whose original word matches it case-insensitively; its
// corrected word is taken when non-empty and its confidence when present.
// Items without a match are dropped. Apply never adds entries.
func Apply(entries []domain.Entry, items []provider.RecheckItem) (updated, unmatched int) {
	for _, it := range items {
		i := firstMatch(entries, it.Word)
		if i < 0 {
			unmatched++
			continue
		}
		if c := strings.TrimSpace(it.CorrectedWord); c != "" {
			entries[i].CorrectedWord = c
		}
		if it.Confidence != nil {
			entries[i].Confidence = domain.Float64Ptr(domain.ClampConfidence(*it.Confidence))
		}
		updated++
	}
	return updated, unmatched
}

func firstMatch(entries []domain.Entry, word string) int {
	word = strings.TrimSpace(word)
	if word == "" {
		return -1
	}
	for i, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Word), word) {
			return i
		}
	}
	return -1
}
