package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/vocabscan/internal/config"
	"github.com/heartmarshall/vocabscan/internal/transport/middleware"
	"github.com/heartmarshall/vocabscan/internal/transport/rest"
)

// NewRouter mounts the HTTP API. limiter may be nil when rate limiting is
// disabled.
func NewRouter(cfg *config.Config, logger *slog.Logger, c *Components, limiter *middleware.RateLimiter) http.Handler {
	heavy, light := passthrough, passthrough
	if limiter != nil {
		heavy = limiter.Limit(cfg.RateLimit.AnalyzePerMin)
		light = limiter.Limit(cfg.RateLimit.DefaultPerMin)
	}

	ph := rest.NewPipelineHandler(c.Pipeline,
		rest.UploadLimits{MaxFileBytes: cfg.Export.MaxUploadMB << 20},
		cfg.Pipeline.AutoFill,
		logger,
	)
	eh := rest.NewExportHandler(c.Renderer, logger)
	hh := rest.NewHealthHandler(BuildVersion(), c.Health...)

	mux := http.NewServeMux()
	mux.Handle("POST /api/analyze", heavy(http.HandlerFunc(ph.Analyze)))
	mux.Handle("POST /api/recheck", heavy(http.HandlerFunc(ph.Recheck)))
	mux.Handle("POST /api/backfill", heavy(http.HandlerFunc(ph.Backfill)))
	mux.Handle("POST /api/dedupe", light(http.HandlerFunc(ph.Dedupe)))
	mux.Handle("POST /api/export/csv", light(http.HandlerFunc(eh.CSV)))
	mux.Handle("POST /api/export/pdf", light(http.HandlerFunc(eh.PDF)))

	mux.HandleFunc("GET /live", hh.Live)
	mux.HandleFunc("GET /ready", hh.Ready)
	mux.HandleFunc("GET /health", hh.Health)
	mux.Handle("GET /metrics", c.Metrics.Handler(logger))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)
}

func passthrough(next http.Handler) http.Handler { return next }
