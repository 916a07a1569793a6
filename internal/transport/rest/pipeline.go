package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
	"github.com/heartmarshall/vocabscan/internal/service/backfill"
	"github.com/heartmarshall/vocabscan/internal/service/pipeline"
	"github.com/heartmarshall/vocabscan/internal/service/recheck"
)

// pipelineService defines the minimal interface needed by PipelineHandler.
type pipelineService interface {
	Analyze(ctx context.Context, images []provider.Image, opts pipeline.Options) (*pipeline.Result, error)
	Recheck(ctx context.Context, entries []domain.Entry, images []provider.Image) (*pipeline.Result, error)
	Backfill(ctx context.Context, entries []domain.Entry) (*pipeline.Result, error)
	Dedupe(entries []domain.Entry) []domain.Entry
	Threshold() float64
}

// PipelineHandler serves the extraction endpoints.
type PipelineHandler struct {
	svc      pipelineService
	limits   UploadLimits
	autoFill bool
	log      *slog.Logger
}

// NewPipelineHandler creates a PipelineHandler. autoFill is the default for
// requests that do not send the autoFill field.
func NewPipelineHandler(svc pipelineService, limits UploadLimits, autoFill bool, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{svc: svc, limits: limits, autoFill: autoFill, log: logger.With("handler", "pipeline")}
}

type resultResponse struct {
	Entries   []entryJSON      `json:"entries"`
	Stage     recheck.State    `json:"stage,omitempty"`
	Threshold float64          `json:"threshold"`
	Recheck   *recheck.Outcome `json:"recheck,omitempty"`
	Backfill  *backfill.Report `json:"backfill,omitempty"`
	Warnings  []domain.Warning `json:"warnings"`
}

func (h *PipelineHandler) toResponse(res *pipeline.Result) resultResponse {
	threshold := h.svc.Threshold()
	warnings := res.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	return resultResponse{
		Entries:   toEntryJSON(res.Entries, threshold),
		Stage:     res.Stage,
		Threshold: threshold,
		Recheck:   res.Recheck,
		Backfill:  res.Backfill,
		Warnings:  warnings,
	}
}

// Analyze handles POST /api/analyze.
func (h *PipelineHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	images, err := parseUpload(w, r, h.limits)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	opts, err := h.parseOptions(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.svc.Analyze(r.Context(), images, opts)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(res))
}

func (h *PipelineHandler) parseOptions(r *http.Request) (pipeline.Options, error) {
	var errs []domain.FieldError

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = r.FormValue("mode")
	}

	minLength, err := formInt(r.FormValue("minLength"))
	if err != nil || minLength < 0 {
		errs = append(errs, domain.FieldError{Field: "minLength", Message: "must be a positive integer"})
	}

	autoFill := h.autoFill
	if v, ok := r.MultipartForm.Value["autoFill"]; ok && len(v) > 0 {
		if autoFill, err = formBool(v[0]); err != nil {
			errs = append(errs, domain.FieldError{Field: "autoFill", Message: "must be true or false"})
		}
	}

	if len(errs) > 0 {
		return pipeline.Options{}, domain.NewValidationErrors(errs)
	}

	return pipeline.Options{
		Mode:      domain.RecognitionMode(strings.ToLower(strings.TrimSpace(mode))),
		MinLength: minLength,
		CaseMode:  domain.CaseMode(strings.ToLower(strings.TrimSpace(r.FormValue("caseMode")))),
		AutoFill:  autoFill,
	}, nil
}

// Recheck handles POST /api/recheck.
func (h *PipelineHandler) Recheck(w http.ResponseWriter, r *http.Request) {
	images, err := parseUpload(w, r, h.limits)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entries, err := decodeEntriesField(r.FormValue("entries"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.svc.Recheck(r.Context(), entries, images)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(res))
}

// Backfill handles POST /api/backfill.
func (h *PipelineHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	entries, err := decodeEntries(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	res, err := h.svc.Backfill(r.Context(), entries)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(res))
}

// Dedupe handles POST /api/dedupe.
func (h *PipelineHandler) Dedupe(w http.ResponseWriter, r *http.Request) {
	entries, err := decodeEntries(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(&pipeline.Result{Entries: h.svc.Dedupe(entries)}))
}
