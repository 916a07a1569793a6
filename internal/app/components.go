package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/vocabscan/internal/adapter/provider/freedict"
	"github.com/heartmarshall/vocabscan/internal/adapter/provider/translate"
	"github.com/heartmarshall/vocabscan/internal/adapter/recognizer/tesseract"
	"github.com/heartmarshall/vocabscan/internal/adapter/recognizer/vision"
	"github.com/heartmarshall/vocabscan/internal/config"
	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/observability/metrics"
	"github.com/heartmarshall/vocabscan/internal/service/backfill"
	"github.com/heartmarshall/vocabscan/internal/service/export"
	"github.com/heartmarshall/vocabscan/internal/service/pipeline"
	"github.com/heartmarshall/vocabscan/internal/service/recheck"
	"github.com/heartmarshall/vocabscan/internal/transport/rest"
)

// translator is satisfied by both translation adapters.
type translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Components are the wired services shared by the server and the CLI.
type Components struct {
	Pipeline *pipeline.Service
	Renderer *export.Renderer
	Metrics  *metrics.PipelineMetrics
	Health   []rest.Component
}

// Build creates adapters and services from cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	m, err := metrics.NewPipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	ocr := tesseract.New(cfg.Tesseract, logger)
	dict := freedict.NewProvider(cfg.Dictionary, logger)

	var tr translator = translate.NewStub()
	if cfg.Translation.Provider == "google" {
		tr = translate.NewGoogle(cfg.Translation, logger)
	}

	deps := pipeline.Deps{
		Local:   ocr,
		Metrics: m,
		Backfill: backfill.NewService(logger, dict, tr, backfill.Config{
			SourceLanguage: cfg.Translation.SourceLanguage,
			TargetLanguage: cfg.Translation.TargetLanguage,
			Concurrency:    cfg.Pipeline.BackfillConcurrency,
			Timeout:        cfg.Pipeline.CallTimeout,
		}),
	}

	threshold := cfg.Pipeline.LowConfidenceThreshold
	if cfg.Vision.Enabled() {
		vc := vision.New(cfg.Vision, logger)
		deps.Vision = vc
		deps.Recheck = recheck.NewOrchestrator(logger, vc, threshold, cfg.Pipeline.CallTimeout)
	} else {
		deps.Recheck = recheck.NewOrchestrator(logger, nil, threshold, cfg.Pipeline.CallTimeout)
	}

	svc := pipeline.NewService(logger, deps, pipeline.Config{
		MinLength:              cfg.Pipeline.MinLength,
		CaseMode:               domain.CaseMode(cfg.Pipeline.CaseMode),
		CallTimeout:            cfg.Pipeline.CallTimeout,
		RecognitionConcurrency: cfg.Pipeline.RecognitionConcurrency,
	})

	return &Components{
		Pipeline: svc,
		Renderer: export.NewRenderer(cfg.Export.FontPath, logger),
		Metrics:  m,
		Health:   healthComponents(cfg, ocr),
	}, nil
}

// healthComponents lists the probes. Tesseract is required only when it is
// the sole recognition mode.
func healthComponents(cfg *config.Config, ocr *tesseract.Recognizer) []rest.Component {
	return []rest.Component{
		{
			Name:     "tesseract",
			Optional: cfg.Vision.Enabled(),
			Check: rest.CheckFunc(func(context.Context) error {
				if ocr.Version() == "" {
					return errors.New("tesseract library not available")
				}
				return nil
			}),
		},
		{
			Name:     "vision",
			Optional: true,
			Check:    configured(cfg.Vision.Enabled(), "vision api key not set"),
		},
		{
			Name:     "translation",
			Optional: true,
			Check:    configured(cfg.Translation.Provider == "google", "translation provider not configured"),
		},
	}
}

func configured(ok bool, msg string) rest.CheckFunc {
	return func(context.Context) error {
		if !ok {
			return errors.New(msg)
		}
		return nil
	}
}
