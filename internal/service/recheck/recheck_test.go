package recheck

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

type mockRechecker struct {
	recheckFn func(ctx context.Context, words []string, images []provider.Image) ([]provider.RecheckItem, error)
	calls     int
}

func (m *mockRechecker) Recheck(ctx context.Context, words []string, images []provider.Image) ([]provider.RecheckItem, error) {
	m.calls++
	return m.recheckFn(ctx, words, images)
}

func aiEntry(word string, conf *float64) domain.Entry {
	return domain.Entry{Word: word, CorrectedWord: word, Confidence: conf, Source: domain.SourceImageAI}
}

var (
	f      = domain.Float64Ptr
	images = []provider.Image{{Name: "page.png", MIMEType: "image/png", Data: []byte{1}}}
)

func TestOrchestrator_Run_NeverCreatesEntries(t *testing.T) {
	t.Parallel()

	rc := &mockRechecker{recheckFn: func(_ context.Context, words []string, _ []provider.Image) ([]provider.RecheckItem, error) {
		assert.Equal(t, []string{"teh"}, words)
		return []provider.RecheckItem{
			{Word: "teh", CorrectedWord: "the", Confidence: f(0.95)},
			{Word: "ghost", CorrectedWord: "ghost", Confidence: f(0.9)},
		}, nil
	}}
	o := NewOrchestrator(slog.Default(), rc, 0.85, time.Minute)

	got, outcome := o.Run(context.Background(), []domain.Entry{aiEntry("teh", f(0.3))}, images)

	require.Len(t, got, 1)
	assert.Equal(t, "teh", got[0].Word)
	assert.Equal(t, "the", got[0].CorrectedWord)
	require.NotNil(t, got[0].Confidence)
	assert.Equal(t, 0.95, *got[0].Confidence)

	assert.Equal(t, StateRecheckComplete, outcome.State)
	assert.Equal(t, StatusApplied, outcome.Status)
	assert.Equal(t, 1, outcome.Updated)
	assert.Equal(t, 1, outcome.Unmatched)
	assert.Equal(t, 1, rc.calls)
}

func TestOrchestrator_Run_SkipsWhenNothingLow(t *testing.T) {
	t.Parallel()

	rc := &mockRechecker{recheckFn: func(context.Context, []string, []provider.Image) ([]provider.RecheckItem, error) {
		t.Fatal("rechecker must not be called")
		return nil, nil
	}}
	o := NewOrchestrator(slog.Default(), rc, 0.85, time.Minute)

	entries := []domain.Entry{
		aiEntry("apple", f(0.99)),
		aiEntry("pear", f(0.85)),
		{Word: "banana", CorrectedWord: "banana", Source: domain.SourceImageOCR},
	}
	got, outcome := o.Run(context.Background(), entries, images)

	assert.Equal(t, entries, got)
	assert.Equal(t, StatusSkipped, outcome.Status)
	assert.Equal(t, StateRecheckComplete, outcome.State)
	assert.Zero(t, rc.calls)
}

func TestOrchestrator_Run_FailureKeepsEntries(t *testing.T) {
	t.Parallel()

	rc := &mockRechecker{recheckFn: func(context.Context, []string, []provider.Image) ([]provider.RecheckItem, error) {
		return nil, errors.New("upstream timeout")
	}}
	o := NewOrchestrator(slog.Default(), rc, 0.85, time.Minute)

	entries := []domain.Entry{aiEntry("teh", f(0.3)), aiEntry("apple", f(0.99))}
	got, outcome := o.Run(context.Background(), entries, images)

	assert.Equal(t, entries, got)
	assert.Equal(t, StatusFailed, outcome.Status)
	require.NotNil(t, outcome.Warning)
	assert.Equal(t, domain.StageRecheck, outcome.Warning.Stage)
	assert.Contains(t, outcome.Warning.Message, "upstream timeout")
	// Entries remain flagged for manual review.
	assert.True(t, got[0].IsLowConfidence(o.Threshold()))
}

func TestOrchestrator_Run_AppliesTimeout(t *testing.T) {
	t.Parallel()

	rc := &mockRechecker{recheckFn: func(ctx context.Context, _ []string, _ []provider.Image) ([]provider.RecheckItem, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := NewOrchestrator(slog.Default(), rc, 0.85, 10*time.Millisecond)

	_, outcome := o.Run(context.Background(), []domain.Entry{aiEntry("teh", nil)}, images)
	assert.Equal(t, StatusFailed, outcome.Status)
}

func TestOrchestrator_Run_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	rc := &mockRechecker{recheckFn: func(context.Context, []string, []provider.Image) ([]provider.RecheckItem, error) {
		return []provider.RecheckItem{{Word: "teh", CorrectedWord: "the", Confidence: f(0.9)}}, nil
	}}
	o := NewOrchestrator(slog.Default(), rc, 0.85, time.Minute)

	entries := []domain.Entry{aiEntry("teh", f(0.3))}
	_, _ = o.Run(context.Background(), entries, images)

	assert.Equal(t, "teh", entries[0].CorrectedWord)
	assert.Equal(t, 0.3, *entries[0].Confidence)
}

func TestNewOrchestrator_DefaultThreshold(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(slog.Default(), nil, 0, 0)
	assert.Equal(t, domain.DefaultLowConfidenceThreshold, o.Threshold())
}

func TestLowConfidenceWords(t *testing.T) {
	t.Parallel()

	entries := []domain.Entry{
		aiEntry("Teh", f(0.3)),
		aiEntry("apple", f(0.9)),
		aiEntry("teh", f(0.2)),
		aiEntry("recieve", nil),
		aiEntry("edge", f(0.849)),
		aiEntry("exact", f(0.85)),
		{Word: "ocrword", Source: domain.SourceImageOCR},
		aiEntry("  ", f(0.1)),
	}

	got := LowConfidenceWords(entries, 0.85)
	assert.Equal(t, []string{"Teh", "recieve", "edge"}, got)
}

func TestApply(t *testing.T) {
	t.Parallel()

	entries := []domain.Entry{
		aiEntry("teh", f(0.3)),
		aiEntry("TEH", f(0.2)),
		aiEntry("wrold", f(0.5)),
		{Word: "hte", CorrectedWord: "the", Source: domain.SourceImageAI, Confidence: f(0.1)},
	}
	items := []provider.RecheckItem{
		{Word: "Teh", CorrectedWord: "the", Confidence: f(0.95)},
		{Word: "wrold", CorrectedWord: "", Confidence: f(1.7)},
		{Word: "the", CorrectedWord: "the", Confidence: f(0.99)},
		{Word: "", CorrectedWord: "x"},
	}

	updated, unmatched := Apply(entries, items)

	assert.Equal(t, 2, updated)
	assert.Equal(t, 2, unmatched)
	require.Len(t, entries, 4)

	// First match only.
	assert.Equal(t, "the", entries[0].CorrectedWord)
	assert.Equal(t, 0.95, *entries[0].Confidence)
	assert.Equal(t, "TEH", entries[1].CorrectedWord)
	assert.Equal(t, 0.2, *entries[1].Confidence)

	// Empty correction keeps the spelling; confidence is clamped.
	assert.Equal(t, "wrold", entries[2].CorrectedWord)
	assert.Equal(t, 1.0, *entries[2].Confidence)

	// Matching is on the original word, not the corrected one.
	assert.Equal(t, 0.1, *entries[3].Confidence)
}

func TestApply_MissingConfidenceKeepsPrevious(t *testing.T) {
	t.Parallel()

	entries := []domain.Entry{aiEntry("teh", f(0.3))}
	updated, _ := Apply(entries, []provider.RecheckItem{{Word: "teh", CorrectedWord: "the"}})

	assert.Equal(t, 1, updated)
	assert.Equal(t, "the", entries[0].CorrectedWord)
	assert.Equal(t, 0.3, *entries[0].Confidence)
}
