package freedict

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

	"github.com/patrickmn/go-cache"

	"github.com/heartmarshall/vocabscan/internal/config"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

const (
	defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	retryDelay     = 500 * time.Millisecond
)

// notFound is cached for words the API does not know, so repeated misses do
// not hit the network again within the TTL.
type notFound struct{}

// Provider looks up English definitions on the FreeDictionary API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	log        *slog.Logger
}

// NewProvider creates a Provider from dictionary settings. An empty base URL
// falls back to the public FreeDictionary endpoint.
func NewProvider(cfg config.DictionaryConfig, logger *slog.Logger) *Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Provider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(ttl, 2*ttl),
		log:        logger.With("adapter", "freedict"),
	}
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return NewProvider(config.DictionaryConfig{BaseURL: baseURL}, logger)
}

// Lookup returns the first definition for word.
// Returns nil, nil if the word is not found (HTTP 404 or no usable definition).
func (p *Provider) Lookup(ctx context.Context, word string) (*provider.Definition, error) {
	key := strings.ToLower(strings.TrimSpace(word))
	if key == "" {
		return nil, nil
	}

	if cached, ok := p.cache.Get(key); ok {
		switch v := cached.(type) {
		case *provider.Definition:
			d := *v
			return &d, nil
		case notFound:
			return nil, nil
		}
	}

	def, err := p.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if def == nil {
		p.cache.SetDefault(key, notFound{})
		return nil, nil
	}
	p.cache.SetDefault(key, def)
	d := *def
	return &d, nil
}

func (p *Provider) fetch(ctx context.Context, word string) (*provider.Definition, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, word)
	if err != nil {
		p.log.WarnContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freedict: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}

	def := firstDefinition(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Bool("found", def != nil),
	)

	return def, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "freedict retry", slog.String("word", word), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	return p.httpClient.Do(req)
}

// firstDefinition picks the first non-empty definition across all entries and
// meanings, keeping the part of speech and example of that sense. When no
// entry has definition text, the first phonetic spelling is used instead.
func firstDefinition(entries []apiEntry) *provider.Definition {
	if len(entries) == 0 {
		return nil
	}

	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				text := strings.TrimSpace(def.Definition)
				if text == "" {
					continue
				}
				return &provider.Definition{
					Word:         entry.Word,
					PartOfSpeech: meaning.PartOfSpeech,
					Meaning:      text,
					Example:      strings.TrimSpace(def.Example),
				}
			}
		}
	}

	for _, entry := range entries {
		if ph := strings.TrimSpace(entry.Phonetic); ph != "" {
			return &provider.Definition{Word: entry.Word, Meaning: ph}
		}
	}
	return nil
}
