// Package backfill fills missing meanings from a dictionary lookup followed by
// a translation, tagging untranslated fallbacks.
package backfill

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

type definitionLookup interface {
	Lookup(ctx context.Context, word string) (*provider.Definition, error)
}

type translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Status is the result of backfilling one entry.
type Status string

const (
	StatusFilled   Status = "filled"
	StatusFallback Status = "fallback"
	StatusNotFound Status = "not-found"
	StatusFailed   Status = "failed"
)

// Outcome is the per-entry result of Backfill. Err carries the adapter error
// behind a fallback or failure.
type Outcome struct {
	Status Status
	Err    error
}

// Report summarizes a BackfillAll run.
type Report struct {
	Attempted int              `json:"attempted"`
	Filled    int              `json:"filled"`
	Fallback  int              `json:"fallback"`
	NotFound  int              `json:"notFound"`
	Failed    int              `json:"failed"`
	Warnings  []domain.Warning `json:"warnings,omitempty"`
}

// Config holds backfill settings.
type Config struct {
	SourceLanguage string
	TargetLanguage string
	Concurrency    int
	Timeout        time.Duration
}

// Service fills missing meanings.
type Service struct {
	log        *slog.Logger
	dictionary definitionLookup
	translator translator
	cfg        Config
}

// NewService creates a backfill Service.
func NewService(log *slog.Logger, dictionary definitionLookup, translator translator, cfg Config) *Service {
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "ko"
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Service{
		log:        log.With("service", "backfill"),
		dictionary: dictionary,
		translator: translator,
		cfg:        cfg,
	}
}

// Backfill looks up the entry's best spelling and translates the definition.
// On lookup failure or no definition the entry is returned unchanged. When
// translation fails the English definition is kept with the fallback marker.
// Empty part of speech and example are filled from the definition.
func (s *Service) Backfill(ctx context.Context, e domain.Entry) (domain.Entry, Outcome) {
	out := e.Clone()
	word := e.Spelling()

	def, err := s.lookup(ctx, word)
	if err != nil {
		return out, Outcome{Status: StatusFailed, Err: err}
	}
	if def == nil || def.Meaning == "" {
		return out, Outcome{Status: StatusNotFound}
	}

	if out.PartOfSpeech == "" {
		out.PartOfSpeech = def.PartOfSpeech
	}
	if out.Example == "" {
		out.Example = def.Example
	}

	translated, err := s.translate(ctx, def.Meaning)
	if err != nil {
		out.MeaningKo = domain.StringPtr(def.Meaning + domain.TranslationFallbackMarker)
		return out, Outcome{Status: StatusFallback, Err: err}
	}
	out.MeaningKo = domain.NormalizeMeaning(&translated)
	if out.MeaningKo == nil {
		out.MeaningKo = domain.StringPtr(def.Meaning + domain.TranslationFallbackMarker)
		return out, Outcome{Status: StatusFallback, Err: errors.New("empty translation")}
	}
	return out, Outcome{Status: StatusFilled}
}

func (s *Service) lookup(ctx context.Context, word string) (*provider.Definition, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.dictionary.Lookup(ctx, word)
}

func (s *Service) translate(ctx context.Context, text string) (string, error) {
	if s.translator == nil {
		return "", domain.ErrUnavailable
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.translator.Translate(ctx, text, s.cfg.SourceLanguage, s.cfg.TargetLanguage)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

type slot struct {
	entry   domain.Entry
	outcome Outcome
	done    bool
}

// BackfillAll backfills every entry without a meaning, in parallel up to the
// configured concurrency. Results are collected per index and written back in
// one ordered pass, so the outcome does not depend on completion order.
// Entries that already have a meaning are left as they are. The input slice
// is not modified.
func (s *Service) BackfillAll(ctx context.Context, entries []domain.Entry) ([]domain.Entry, Report) {
	out := domain.CloneEntries(entries)
	slots := make([]slot, len(out))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	var report Report
	for i, e := range out {
		if e.HasMeaning() || e.Spelling() == "" {
			continue
		}
		report.Attempted++
		g.Go(func() error {
			if ctx.Err() != nil {
				slots[i] = slot{entry: e, outcome: Outcome{Status: StatusFailed, Err: ctx.Err()}, done: true}
				return nil
			}
			filled, outcome := s.Backfill(ctx, e)
			slots[i] = slot{entry: filled, outcome: outcome, done: true}
			return nil
		})
	}
	_ = g.Wait()

	for i, sl := range slots {
		if !sl.done {
			continue
		}
		out[i] = sl.entry
		word := sl.entry.Spelling()

		switch sl.outcome.Status {
		case StatusFilled:
			report.Filled++
		case StatusFallback:
			report.Fallback++
			report.Warnings = append(report.Warnings, domain.Warning{
				Stage:   domain.StageBackfill,
				Subject: word,
				Message: "translation failed; English definition kept, edit manually",
			})
		case StatusNotFound:
			report.NotFound++
			report.Warnings = append(report.Warnings, domain.Warning{
				Stage:   domain.StageBackfill,
				Subject: word,
				Message: "no dictionary definition found",
			})
		case StatusFailed:
			report.Failed++
			report.Warnings = append(report.Warnings, domain.Warning{
				Stage:   domain.StageBackfill,
				Subject: word,
				Message: "dictionary lookup failed: " + sl.outcome.Err.Error(),
			})
		}
	}

	s.log.InfoContext(ctx, "backfill complete",
		slog.Int("attempted", report.Attempted),
		slog.Int("filled", report.Filled),
		slog.Int("fallback", report.Fallback),
		slog.Int("not_found", report.NotFound),
		slog.Int("failed", report.Failed),
	)

	return out, report
}
