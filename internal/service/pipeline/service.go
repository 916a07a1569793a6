// Package pipeline owns the entry collection of one extraction operation and
// runs the recognition, reconciliation, recheck and backfill stages in order.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
	"github.com/heartmarshall/vocabscan/internal/service/backfill"
	"github.com/heartmarshall/vocabscan/internal/service/recheck"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type textRecognizer interface {
	Recognize(ctx context.Context, img provider.Image) (string, error)
}

type visionAnalyzer interface {
	Analyze(ctx context.Context, img provider.Image) ([]provider.RecognizedItem, error)
}

type recheckRunner interface {
	Run(ctx context.Context, entries []domain.Entry, images []provider.Image) ([]domain.Entry, recheck.Outcome)
	Threshold() float64
}

type meaningBackfiller interface {
	BackfillAll(ctx context.Context, entries []domain.Entry) ([]domain.Entry, backfill.Report)
}

type recorder interface {
	RecordRecognition(mode string, err error)
	RecordRecheck(status string)
	RecordBackfill(status string, n int)
	RecordEntries(n int)
	ObserveDuration(operation string, start time.Time)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds pipeline defaults applied when Options leave a field unset.
type Config struct {
	MinLength              int
	CaseMode               domain.CaseMode
	CallTimeout            time.Duration
	RecognitionConcurrency int
}

// Deps are the collaborators of the pipeline. Local or Vision may be nil when
// that recognition mode is not available; Metrics may be nil.
type Deps struct {
	Local    textRecognizer
	Vision   visionAnalyzer
	Recheck  recheckRunner
	Backfill meaningBackfiller
	Metrics  recorder
}

// Service runs extraction operations.
type Service struct {
	log      *slog.Logger
	local    textRecognizer
	vision   visionAnalyzer
	recheck  recheckRunner
	backfill meaningBackfiller
	metrics  recorder
	cfg      Config
}

// NewService creates a pipeline Service.
func NewService(log *slog.Logger, deps Deps, cfg Config) *Service {
	if cfg.MinLength <= 0 {
		cfg.MinLength = domain.DefaultMinWordLength
	}
	if !cfg.CaseMode.IsValid() {
		cfg.CaseMode = domain.CaseLower
	}
	if cfg.RecognitionConcurrency < 1 {
		cfg.RecognitionConcurrency = 1
	}
	m := deps.Metrics
	if m == nil {
		m = noopRecorder{}
	}
	return &Service{
		log:      log.With("service", "pipeline"),
		local:    deps.Local,
		vision:   deps.Vision,
		recheck:  deps.Recheck,
		backfill: deps.Backfill,
		metrics:  m,
		cfg:      cfg,
	}
}

// Threshold returns the confidence below which entries are flagged for review.
func (s *Service) Threshold() float64 {
	if s.recheck == nil {
		return domain.DefaultLowConfidenceThreshold
	}
	return s.recheck.Threshold()
}

// RemoteEnabled reports whether remote recognition is configured.
func (s *Service) RemoteEnabled() bool { return s.vision != nil }

// LocalEnabled reports whether local recognition is configured.
func (s *Service) LocalEnabled() bool { return s.local != nil }

type noopRecorder struct{}

func (noopRecorder) RecordRecognition(string, error)   {}
func (noopRecorder) RecordRecheck(string)              {}
func (noopRecorder) RecordBackfill(string, int)        {}
func (noopRecorder) RecordEntries(int)                 {}
func (noopRecorder) ObserveDuration(string, time.Time) {}
