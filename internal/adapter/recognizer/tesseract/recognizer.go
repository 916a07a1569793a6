package tesseract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/heartmarshall/vocabscan/internal/config"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

// Recognizer extracts raw text from word-list images with a local Tesseract
// installation.
type Recognizer struct {
	clientFactory func() *gosseract.Client
	languages     []string
	log           *slog.Logger
}

// New creates a Recognizer. Languages come from cfg as "eng" or "eng+kor".
func New(cfg config.TesseractConfig, logger *slog.Logger) *Recognizer {
	return &Recognizer{
		clientFactory: gosseract.NewClient,
		languages:     parseLanguages(cfg.Languages),
		log:           logger.With("adapter", "tesseract"),
	}
}

// Recognize returns the plain text Tesseract reads from img. A fresh client is
// used per call since gosseract clients are not safe for concurrent use.
func (r *Recognizer) Recognize(ctx context.Context, img provider.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(img.Data) == 0 {
		return "", fmt.Errorf("tesseract: %q: empty image", img.Name)
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("tesseract: set languages: %w", err)
	}
	if err := c.SetImageFromBytes(img.Data); err != nil {
		return "", fmt.Errorf("tesseract: %q: set image: %w", img.Name, err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %q: recognize text: %w", img.Name, err)
	}

	r.log.DebugContext(ctx, "tesseract recognize",
		slog.String("image", img.Name),
		slog.Int("chars", len(text)),
	)
	return text, nil
}

// Version reports the linked Tesseract version, used by the readiness probe.
func (r *Recognizer) Version() string {
	c := r.clientFactory()
	defer c.Close()
	return c.Version()
}

func parseLanguages(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return []string{"eng"}
	}
	return fields
}
