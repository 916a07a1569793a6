package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/k3a/html2text"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/vocabscan/internal/config"
)

const (
	defaultGoogleURL = "https://translation.googleapis.com/language/translate/v2"
	defaultRPS       = 5
)

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Google translates text with the Google Cloud Translation v2 REST API.
type Google struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewGoogle creates a Google translator from translation settings.
func NewGoogle(cfg config.TranslationConfig, logger *slog.Logger) *Google {
	return NewGoogleWithClient(cfg, &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}, logger)
}

// NewGoogleWithClient creates a Google translator with a caller-supplied HTTP client.
func NewGoogleWithClient(cfg config.TranslationConfig, client *http.Client, logger *slog.Logger) *Google {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGoogleURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	return &Google{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		log:        logger.With("adapter", "translate"),
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Second
	}
	return d
}

// Translate returns text translated from source to target language.
func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("translate: empty text")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("translate: rate limiter: %w", err)
	}

	form := url.Values{}
	form.Set("key", g.apiKey)
	form.Set("q", text)
	form.Set("source", source)
	form.Set("target", target)
	form.Set("format", "text")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.log.WarnContext(ctx, "translate request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: read body: %w", err)
	}

	var parsed googleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("translate: decode json: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("translate: status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Data.Translations) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}

	// The API escapes entities even with format=text for some inputs.
	out := strings.TrimSpace(html2text.HTML2Text(parsed.Data.Translations[0].TranslatedText))
	if out == "" {
		return "", fmt.Errorf("translate: empty translation")
	}

	g.log.DebugContext(ctx, "translate response",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}
