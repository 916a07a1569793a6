package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/pkg/ctxutil"
)

type errorResponse struct {
	Error     string              `json:"error"`
	Fields    []domain.FieldError `json:"fields,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: ctxutil.RequestIDFromCtx(r.Context()),
	})
}

// handleError maps service errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     verr.Error(),
			Fields:    verr.Errors,
			RequestID: ctxutil.RequestIDFromCtx(r.Context()),
		})
	case errors.As(err, &maxErr):
		writeError(w, r, http.StatusRequestEntityTooLarge, "upload too large")
	case errors.Is(err, domain.ErrNoImages):
		writeError(w, r, http.StatusBadRequest, "no images uploaded")
	case errors.Is(err, domain.ErrNothingRecognized):
		writeError(w, r, http.StatusUnprocessableEntity, "no words were recognized in the uploaded images")
	case errors.Is(err, domain.ErrRecognitionFailed):
		log.WarnContext(r.Context(), "recognition failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusUnprocessableEntity, "image recognition failed for every image, try again or switch mode")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		log.InfoContext(r.Context(), "request canceled")
	default:
		log.ErrorContext(r.Context(), "unexpected error", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
