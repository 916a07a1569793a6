package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

// imageFields are the multipart field names accepted for image files.
var imageFields = []string{"image", "images", "file", "upload"}

const (
	maxImagesPerRequest = 20
	multipartMemory     = 32 << 20
	maxJSONBody         = 4 << 20
)

// UploadLimits bound multipart uploads.
type UploadLimits struct {
	MaxFileBytes int64
}

func (l UploadLimits) maxBody() int64 {
	return l.MaxFileBytes*maxImagesPerRequest + (1 << 20)
}

// parseUpload parses a multipart request and reads every image part.
func parseUpload(w http.ResponseWriter, r *http.Request, limits UploadLimits) ([]provider.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.maxBody())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, domain.NewValidationError("body", "expected multipart/form-data")
	}

	var headers []*multipart.FileHeader
	for _, field := range imageFields {
		headers = append(headers, r.MultipartForm.File[field]...)
	}
	if len(headers) > maxImagesPerRequest {
		return nil, domain.NewValidationError("images", fmt.Sprintf("at most %d images per request", maxImagesPerRequest))
	}

	images := make([]provider.Image, 0, len(headers))
	for _, fh := range headers {
		img, err := readImage(fh, limits.MaxFileBytes)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readImage(fh *multipart.FileHeader, maxBytes int64) (provider.Image, error) {
	if fh.Size > maxBytes {
		return provider.Image{}, domain.NewValidationError("images",
			fmt.Sprintf("%s exceeds the %d MB limit", fh.Filename, maxBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return provider.Image{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return provider.Image{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return provider.Image{}, domain.NewValidationError("images", fh.Filename+" is not an image")
	}

	return provider.Image{Name: fh.Filename, MIMEType: mime, Data: data}, nil
}

// formBool accepts the usual checkbox spellings.
func formBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func formInt(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func decodeEntries(w http.ResponseWriter, r *http.Request) ([]domain.Entry, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req entriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, domain.NewValidationError("body", "invalid request body")
	}
	return toDomainEntries(req.Entries)
}

func decodeEntriesField(raw string) ([]domain.Entry, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewValidationError("entries", "required")
	}
	var in []entryJSON
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, domain.NewValidationError("entries", "must be a JSON array of entries")
	}
	return toDomainEntries(in)
}
