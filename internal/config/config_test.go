package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

log:
  level: "debug"
  format: "text"

pipeline:
  min_length: 3
  case_mode: "none"
  low_confidence_threshold: 0.9
  call_timeout: "45s"
  recognition_concurrency: 2
  backfill_concurrency: 8
  auto_fill: true

vision:
  api_key: "sk-test"
  model: "primary-model"
  fallback_model: "fallback-model"
  max_tokens: 2048

dictionary:
  timeout: "3s"
  cache_ttl: "30m"

translation:
  provider: "google"
  api_key: "g-key"
  requests_per_second: 2

export:
  max_upload_mb: 5
`

// validConfig returns a config equivalent to the env-default values.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			AnalyzePerMin: 20,
			DefaultPerMin: 120,
		},
		Pipeline: PipelineConfig{
			MinLength:              2,
			CaseMode:               "lower",
			LowConfidenceThreshold: 0.85,
			CallTimeout:            60 * time.Second,
			RecognitionConcurrency: 4,
			BackfillConcurrency:    4,
		},
		Vision:      VisionConfig{MaxTokens: 4096},
		Translation: TranslationConfig{Provider: "none"},
		Export:      ExportConfig{MaxUploadMB: 10},
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Pipeline
	if cfg.Pipeline.MinLength != 3 {
		t.Errorf("pipeline.min_length = %d, want 3", cfg.Pipeline.MinLength)
	}
	if cfg.Pipeline.CaseMode != "none" {
		t.Errorf("pipeline.case_mode = %q, want none", cfg.Pipeline.CaseMode)
	}
	if cfg.Pipeline.LowConfidenceThreshold != 0.9 {
		t.Errorf("pipeline.low_confidence_threshold = %v, want 0.9", cfg.Pipeline.LowConfidenceThreshold)
	}
	if cfg.Pipeline.CallTimeout != 45*time.Second {
		t.Errorf("pipeline.call_timeout = %v, want 45s", cfg.Pipeline.CallTimeout)
	}
	if !cfg.Pipeline.AutoFill {
		t.Error("pipeline.auto_fill should be true")
	}

	// Vision
	if !cfg.Vision.Enabled() {
		t.Error("vision should be enabled with an api key")
	}
	if cfg.Vision.FallbackModel != "fallback-model" {
		t.Errorf("vision.fallback_model = %q", cfg.Vision.FallbackModel)
	}

	// Dictionary
	if cfg.Dictionary.Timeout != 3*time.Second {
		t.Errorf("dictionary.timeout = %v, want 3s", cfg.Dictionary.Timeout)
	}
	if cfg.Dictionary.CacheTTL != 30*time.Minute {
		t.Errorf("dictionary.cache_ttl = %v, want 30m", cfg.Dictionary.CacheTTL)
	}
	if cfg.Dictionary.BaseURL == "" {
		t.Error("dictionary.base_url should fall back to the default")
	}

	// Translation
	if cfg.Translation.Provider != "google" {
		t.Errorf("translation.provider = %q, want google", cfg.Translation.Provider)
	}
	if cfg.Translation.TargetLanguage != "ko" {
		t.Errorf("translation.target_language = %q, want ko (default)", cfg.Translation.TargetLanguage)
	}

	// Export
	if cfg.Export.MaxUploadMB != 5 {
		t.Errorf("export.max_upload_mb = %d, want 5", cfg.Export.MaxUploadMB)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PIPELINE_MIN_LENGTH", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
	if cfg.Pipeline.MinLength != 4 {
		t.Errorf("pipeline.min_length = %d, want 4 (ENV override)", cfg.Pipeline.MinLength)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Pipeline.LowConfidenceThreshold != 0.85 {
		t.Errorf("pipeline.low_confidence_threshold = %v, want 0.85 (default)", cfg.Pipeline.LowConfidenceThreshold)
	}
	if cfg.Pipeline.CallTimeout != 60*time.Second {
		t.Errorf("pipeline.call_timeout = %v, want 60s (default)", cfg.Pipeline.CallTimeout)
	}
	if cfg.Vision.Enabled() {
		t.Error("vision should be disabled without an api key")
	}
	if cfg.Export.MaxUploadMB != 10 {
		t.Errorf("export.max_upload_mb = %d, want 10 (default)", cfg.Export.MaxUploadMB)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "server: [unclosed")
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"min length zero", func(c *Config) { c.Pipeline.MinLength = 0 }, "min_length"},
		{"unknown case mode", func(c *Config) { c.Pipeline.CaseMode = "title" }, "case_mode"},
		{"threshold zero", func(c *Config) { c.Pipeline.LowConfidenceThreshold = 0 }, "low_confidence_threshold"},
		{"threshold above one", func(c *Config) { c.Pipeline.LowConfidenceThreshold = 1.5 }, "low_confidence_threshold"},
		{"call timeout zero", func(c *Config) { c.Pipeline.CallTimeout = 0 }, "call_timeout"},
		{"recognition concurrency zero", func(c *Config) { c.Pipeline.RecognitionConcurrency = 0 }, "recognition_concurrency"},
		{"backfill concurrency zero", func(c *Config) { c.Pipeline.BackfillConcurrency = 0 }, "backfill_concurrency"},
		{"max tokens zero", func(c *Config) { c.Vision.MaxTokens = 0 }, "max_tokens"},
		{"google without key", func(c *Config) { c.Translation.Provider = "google" }, "api_key"},
		{"unknown translation provider", func(c *Config) { c.Translation.Provider = "deepl" }, "unknown provider"},
		{"upload limit zero", func(c *Config) { c.Export.MaxUploadMB = 0 }, "max_upload_mb"},
		{"missing font", func(c *Config) { c.Export.FontPath = "/nonexistent/font.ttf" }, "font_path"},
		{"rate limit zero", func(c *Config) { c.RateLimit.AnalyzePerMin = 0 }, "ratelimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_GoogleTranslationConfigured(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Translation = TranslationConfig{
		Provider:          "google",
		APIKey:            "key",
		RequestsPerSecond: 5,
		SourceLanguage:    "en",
		TargetLanguage:    "ko",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RateLimitDisabledIgnoresLimits(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
