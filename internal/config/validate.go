package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if c.Vision.MaxTokens <= 0 {
		return fmt.Errorf("vision.max_tokens must be > 0 (got %d)", c.Vision.MaxTokens)
	}

	if err := c.Translation.validate(); err != nil {
		return fmt.Errorf("translation: %w", err)
	}

	if c.Export.MaxUploadMB <= 0 {
		return fmt.Errorf("export.max_upload_mb must be > 0 (got %d)", c.Export.MaxUploadMB)
	}
	if c.Export.FontPath != "" {
		if _, err := os.Stat(c.Export.FontPath); err != nil {
			return fmt.Errorf("export.font_path: %w", err)
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.AnalyzePerMin <= 0 || c.RateLimit.DefaultPerMin <= 0) {
		return fmt.Errorf("ratelimit limits must be > 0 when enabled")
	}

	return nil
}

func (p *PipelineConfig) validate() error {
	if p.MinLength < 1 {
		return fmt.Errorf("min_length must be >= 1 (got %d)", p.MinLength)
	}
	switch strings.ToLower(p.CaseMode) {
	case "lower", "upper", "none":
	default:
		return fmt.Errorf("case_mode must be lower, upper or none (got %q)", p.CaseMode)
	}
	if p.LowConfidenceThreshold <= 0 || p.LowConfidenceThreshold > 1 {
		return fmt.Errorf("low_confidence_threshold must be in (0, 1] (got %v)", p.LowConfidenceThreshold)
	}
	if p.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be > 0 (got %v)", p.CallTimeout)
	}
	if p.RecognitionConcurrency < 1 {
		return fmt.Errorf("recognition_concurrency must be >= 1 (got %d)", p.RecognitionConcurrency)
	}
	if p.BackfillConcurrency < 1 {
		return fmt.Errorf("backfill_concurrency must be >= 1 (got %d)", p.BackfillConcurrency)
	}
	return nil
}

func (t *TranslationConfig) validate() error {
	switch t.Provider {
	case "none", "":
		return nil
	case "google":
		if t.APIKey == "" {
			return fmt.Errorf("api_key is required for provider google")
		}
	default:
		return fmt.Errorf("unknown provider %q", t.Provider)
	}
	if t.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be > 0 (got %v)", t.RequestsPerSecond)
	}
	if t.SourceLanguage == "" || t.TargetLanguage == "" {
		return fmt.Errorf("source_language and target_language are required")
	}
	return nil
}
