package rest

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/service/export"
)

// pdfRenderer defines the minimal interface needed by ExportHandler.
type pdfRenderer interface {
	RenderPDF(w io.Writer, entries []domain.Entry, layout domain.Layout) error
}

// ExportHandler serves wordbook downloads.
type ExportHandler struct {
	pdf pdfRenderer
	log *slog.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(pdf pdfRenderer, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{pdf: pdf, log: logger.With("handler", "export")}
}

// CSV handles POST /api/export/csv.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	entries, err := decodeEntries(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, entries); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeAttachment(w, "text/csv; charset=utf-8", export.CSVFilename, buf.Bytes())
}

// PDF handles POST /api/export/pdf?layout=list|flashcards|worksheet.
func (h *ExportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	layout := domain.Layout(r.URL.Query().Get("layout"))
	if layout == "" {
		layout = domain.LayoutList
	}
	if !layout.IsValid() {
		handleError(h.log, w, r, domain.NewValidationError("layout", "must be list, flashcards or worksheet"))
		return
	}

	entries, err := decodeEntries(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.pdf.RenderPDF(&buf, entries, layout); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeAttachment(w, "application/pdf", export.PDFFilename(layout), buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck
}
