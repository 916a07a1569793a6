package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
	"github.com/heartmarshall/vocabscan/internal/service/backfill"
	"github.com/heartmarshall/vocabscan/internal/service/parser"
	"github.com/heartmarshall/vocabscan/internal/service/recheck"
	"github.com/heartmarshall/vocabscan/internal/service/reconcile"
)

// Options are the per-request extraction settings. Zero values fall back to
// the service Config; an empty Mode picks remote when it is configured.
type Options struct {
	Mode      domain.RecognitionMode
	MinLength int
	CaseMode  domain.CaseMode
	AutoFill  bool
}

// Result is the outcome of one pipeline operation.
type Result struct {
	Entries  []domain.Entry   `json:"entries"`
	Stage    recheck.State    `json:"stage,omitempty"`
	Recheck  *recheck.Outcome `json:"recheck,omitempty"`
	Backfill *backfill.Report `json:"backfill,omitempty"`
	Warnings []domain.Warning `json:"warnings"`
}

func (r *Result) warn(w ...domain.Warning) {
	r.Warnings = append(r.Warnings, w...)
}

func (s *Service) resolveOptions(opts Options) (Options, error) {
	var errs []domain.FieldError

	if opts.Mode == "" {
		if s.vision != nil {
			opts.Mode = domain.ModeRemote
		} else {
			opts.Mode = domain.ModeLocal
		}
	}
	switch {
	case !opts.Mode.IsValid():
		errs = append(errs, domain.FieldError{Field: "mode", Message: "must be local or remote"})
	case opts.Mode == domain.ModeRemote && s.vision == nil:
		errs = append(errs, domain.FieldError{Field: "mode", Message: "remote recognition is not configured"})
	case opts.Mode == domain.ModeLocal && s.local == nil:
		errs = append(errs, domain.FieldError{Field: "mode", Message: "local recognition is not configured"})
	}

	if opts.MinLength <= 0 {
		opts.MinLength = s.cfg.MinLength
	}
	if opts.CaseMode == "" {
		opts.CaseMode = s.cfg.CaseMode
	}
	if !opts.CaseMode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "caseMode", Message: "must be lower, upper or none"})
	}

	if len(errs) > 0 {
		return opts, domain.NewValidationErrors(errs)
	}
	return opts, nil
}

// Analyze extracts entries from images. Per-image recognition failures are
// reported as warnings; the operation fails only when no images are given,
// every recognition call fails, or nothing usable was recognized. On failure
// no entries are returned.
func (s *Service) Analyze(ctx context.Context, images []provider.Image, opts Options) (*Result, error) {
	start := time.Now()
	defer s.metrics.ObserveDuration("analyze", start)

	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}
	opts, err := s.resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Warnings: []domain.Warning{}}

	candidates, err := s.recognize(ctx, images, opts, res)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNothingRecognized
	}

	res.Entries = reconcile.Merge(candidates)
	res.Stage = recheck.StateInitialPassComplete

	if opts.Mode == domain.ModeRemote && s.recheck != nil {
		s.runRecheck(ctx, res, images)
	}

	if opts.AutoFill && s.backfill != nil {
		s.runBackfill(ctx, res)
	}

	s.metrics.RecordEntries(len(res.Entries))
	s.log.InfoContext(ctx, "analyze complete",
		slog.String("mode", opts.Mode.String()),
		slog.Int("images", len(images)),
		slog.Int("candidates", len(candidates)),
		slog.Int("entries", len(res.Entries)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

type recognition struct {
	entries []domain.Entry
	err     error
}

// recognize runs one recognition call per image, concurrently up to the
// configured limit, and concatenates the candidates in image order.
func (s *Service) recognize(ctx context.Context, images []provider.Image, opts Options, res *Result) ([]domain.Entry, error) {
	slots := make([]recognition, len(images))

	var g errgroup.Group
	g.SetLimit(s.cfg.RecognitionConcurrency)
	for i, img := range images {
		g.Go(func() error {
			slots[i] = s.recognizeOne(ctx, img, opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		candidates []domain.Entry
		errs       []error
	)
	for i, sl := range slots {
		if sl.err != nil {
			errs = append(errs, sl.err)
			res.warn(domain.Warning{
				Stage:   domain.StageRecognition,
				Subject: imageLabel(images[i], i),
				Message: sl.err.Error(),
			})
			continue
		}
		candidates = append(candidates, sl.entries...)
	}

	if len(errs) == len(images) {
		return nil, fmt.Errorf("%w: %w", domain.ErrRecognitionFailed, errors.Join(errs...))
	}
	return candidates, nil
}

func (s *Service) recognizeOne(ctx context.Context, img provider.Image, opts Options) recognition {
	callCtx := ctx
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}

	var out recognition
	switch opts.Mode {
	case domain.ModeRemote:
		items, err := s.vision.Analyze(callCtx, img)
		out = recognition{entries: reconcile.FromRecognizedItems(items, opts.MinLength, opts.CaseMode), err: err}
	default:
		text, err := s.local.Recognize(callCtx, img)
		out = recognition{entries: parser.ParseLines(text, opts.MinLength, opts.CaseMode), err: err}
	}

	s.metrics.RecordRecognition(opts.Mode.String(), out.err)
	if out.err != nil {
		out.entries = nil
		s.log.WarnContext(ctx, "recognition failed",
			slog.String("mode", opts.Mode.String()),
			slog.String("image", img.Name),
			slog.String("error", out.err.Error()),
		)
	}
	return out
}

func imageLabel(img provider.Image, i int) string {
	if img.Name != "" {
		return img.Name
	}
	return fmt.Sprintf("image %d", i+1)
}

func (s *Service) runRecheck(ctx context.Context, res *Result, images []provider.Image) {
	rechecked, outcome := s.recheck.Run(ctx, res.Entries, images)
	res.Entries = reconcile.Merge(rechecked)
	res.Stage = outcome.State
	res.Recheck = &outcome
	if outcome.Warning != nil {
		res.warn(*outcome.Warning)
	}
	s.metrics.RecordRecheck(string(outcome.Status))
}

func (s *Service) runBackfill(ctx context.Context, res *Result) {
	filled, report := s.backfill.BackfillAll(ctx, res.Entries)
	res.Entries = filled
	res.Backfill = &report
	res.warn(report.Warnings...)

	s.metrics.RecordBackfill(string(backfill.StatusFilled), report.Filled)
	s.metrics.RecordBackfill(string(backfill.StatusFallback), report.Fallback)
	s.metrics.RecordBackfill(string(backfill.StatusNotFound), report.NotFound)
	s.metrics.RecordBackfill(string(backfill.StatusFailed), report.Failed)
}

// Recheck re-runs the confidence recheck on a user-edited entry collection
// against a new image set. The stage restarts at initial-pass-complete.
func (s *Service) Recheck(ctx context.Context, entries []domain.Entry, images []provider.Image) (*Result, error) {
	start := time.Now()
	defer s.metrics.ObserveDuration("recheck", start)

	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}
	if s.recheck == nil || s.vision == nil {
		return nil, domain.NewValidationError("mode", "remote recognition is not configured")
	}

	res := &Result{
		Entries:  reconcile.Merge(entries),
		Stage:    recheck.StateInitialPassComplete,
		Warnings: []domain.Warning{},
	}
	s.runRecheck(ctx, res, images)
	return res, nil
}

// Backfill fills missing meanings of entries.
func (s *Service) Backfill(ctx context.Context, entries []domain.Entry) (*Result, error) {
	start := time.Now()
	defer s.metrics.ObserveDuration("backfill", start)

	if s.backfill == nil {
		return nil, domain.ErrUnavailable
	}

	res := &Result{Entries: domain.CloneEntries(entries), Warnings: []domain.Warning{}}
	if res.Entries == nil {
		res.Entries = []domain.Entry{}
	}
	s.runBackfill(ctx, res)
	return res, nil
}

// Dedupe merges duplicate entries.
func (s *Service) Dedupe(entries []domain.Entry) []domain.Entry {
	return reconcile.Merge(entries)
}
