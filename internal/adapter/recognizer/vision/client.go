package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/vocabscan/internal/config"
	"github.com/heartmarshall/vocabscan/internal/provider"
)

// Client calls a multimodal Claude model to read word-list images.
// It serves both the structured first pass (Analyze) and the targeted
// recheck pass (Recheck).
type Client struct {
	api           anthropic.Client
	model         string
	fallbackModel string
	maxTokens     int64
	log           *slog.Logger
}

// New creates a vision Client. Extra request options are appended after the
// ones derived from cfg.
func New(cfg config.VisionConfig, logger *slog.Logger, opts ...option.RequestOption) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{
		api:           anthropic.NewClient(reqOpts...),
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		maxTokens:     maxTokens,
		log:           logger.With("adapter", "vision"),
	}
}

// complete sends one prompt with the images attached and returns the text of
// the reply. The primary model is tried first; on any error the fallback
// model is tried once.
func (c *Client) complete(ctx context.Context, system, prompt string, images []provider.Image) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(images)+1)
	blocks = append(blocks, anthropic.NewTextBlock(prompt))
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType(img), base64.StdEncoding.EncodeToString(img.Data)))
	}

	params := anthropic.MessageNewParams{
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}

	text, err := c.send(ctx, c.model, params)
	if err == nil {
		return text, nil
	}
	if c.fallbackModel == "" || c.fallbackModel == c.model || ctx.Err() != nil {
		return "", err
	}

	c.log.WarnContext(ctx, "primary model failed, trying fallback",
		slog.String("model", c.model),
		slog.String("fallback_model", c.fallbackModel),
		slog.String("error", err.Error()),
	)

	text, fbErr := c.send(ctx, c.fallbackModel, params)
	if fbErr != nil {
		return "", errors.Join(err, fbErr)
	}
	return text, nil
}

func (c *Client) send(ctx context.Context, model string, params anthropic.MessageNewParams) (string, error) {
	params.Model = anthropic.Model(model)

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("vision: %s: %w", model, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("vision: %s: empty response", model)
	}
	return b.String(), nil
}

// extractJSON finds the outermost JSON object in a model reply that may be
// wrapped in prose or code fences.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}

func mediaType(img provider.Image) string {
	mt := strings.ToLower(strings.TrimSpace(img.MIMEType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mt
	case "image/jpg":
		return "image/jpeg"
	}
	if len(img.Data) > 0 {
		if detected := http.DetectContentType(img.Data); strings.HasPrefix(detected, "image/") {
			return detected
		}
	}
	return "image/png"
}
