package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Vision      VisionConfig      `yaml:"vision"`
	Tesseract   TesseractConfig   `yaml:"tesseract"`
	Dictionary  DictionaryConfig  `yaml:"dictionary"`
	Translation TranslationConfig `yaml:"translation"`
	Export      ExportConfig      `yaml:"export"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"180s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// RateLimitConfig holds per-IP request limits for the API routes.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATELIMIT_ENABLED"          env-default:"true"`
	AnalyzePerMin   int           `yaml:"analyze_per_min"  env:"RATELIMIT_ANALYZE_PER_MIN"  env-default:"20"`
	DefaultPerMin   int           `yaml:"default_per_min"  env:"RATELIMIT_DEFAULT_PER_MIN"  env-default:"120"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATELIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}

// PipelineConfig holds extraction pipeline defaults.
type PipelineConfig struct {
	MinLength              int           `yaml:"min_length"               env:"PIPELINE_MIN_LENGTH"               env-default:"2"`
	CaseMode               string        `yaml:"case_mode"                env:"PIPELINE_CASE_MODE"                env-default:"lower"`
	LowConfidenceThreshold float64       `yaml:"low_confidence_threshold" env:"PIPELINE_LOW_CONFIDENCE_THRESHOLD" env-default:"0.85"`
	CallTimeout            time.Duration `yaml:"call_timeout"             env:"PIPELINE_CALL_TIMEOUT"             env-default:"60s"`
	RecognitionConcurrency int           `yaml:"recognition_concurrency"  env:"PIPELINE_RECOGNITION_CONCURRENCY"  env-default:"4"`
	BackfillConcurrency    int           `yaml:"backfill_concurrency"     env:"PIPELINE_BACKFILL_CONCURRENCY"     env-default:"4"`
	AutoFill               bool          `yaml:"auto_fill"                env:"PIPELINE_AUTO_FILL"                env-default:"false"`
}

// VisionConfig holds settings for the remote vision model.
// An empty APIKey disables remote mode.
type VisionConfig struct {
	APIKey        string `yaml:"api_key"        env:"VISION_API_KEY"`
	Model         string `yaml:"model"          env:"VISION_MODEL"          env-default:"claude-sonnet-4-5"`
	FallbackModel string `yaml:"fallback_model" env:"VISION_FALLBACK_MODEL" env-default:"claude-haiku-4-5"`
	MaxTokens     int64  `yaml:"max_tokens"     env:"VISION_MAX_TOKENS"     env-default:"4096"`
	BaseURL       string `yaml:"base_url"       env:"VISION_BASE_URL"`
}

// Enabled reports whether remote vision calls can be made.
func (c VisionConfig) Enabled() bool { return c.APIKey != "" }

// TesseractConfig holds local OCR settings.
type TesseractConfig struct {
	Languages string `yaml:"languages" env:"TESSERACT_LANGUAGES" env-default:"eng"`
}

// DictionaryConfig holds definition lookup settings.
type DictionaryConfig struct {
	BaseURL  string        `yaml:"base_url"  env:"DICTIONARY_BASE_URL"  env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	Timeout  time.Duration `yaml:"timeout"   env:"DICTIONARY_TIMEOUT"   env-default:"10s"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"DICTIONARY_CACHE_TTL" env-default:"1h"`
}

// TranslationConfig holds translation provider settings.
type TranslationConfig struct {
	Provider          string        `yaml:"provider"            env:"TRANSLATION_PROVIDER"            env-default:"none"`
	APIKey            string        `yaml:"api_key"             env:"TRANSLATION_API_KEY"`
	BaseURL           string        `yaml:"base_url"            env:"TRANSLATION_BASE_URL"`
	Timeout           time.Duration `yaml:"timeout"             env:"TRANSLATION_TIMEOUT"             env-default:"15s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"TRANSLATION_REQUESTS_PER_SECOND" env-default:"5"`
	SourceLanguage    string        `yaml:"source_language"     env:"TRANSLATION_SOURCE_LANGUAGE"     env-default:"en"`
	TargetLanguage    string        `yaml:"target_language"     env:"TRANSLATION_TARGET_LANGUAGE"     env-default:"ko"`
}

// ExportConfig holds export and upload settings.
type ExportConfig struct {
	FontPath    string `yaml:"font_path"     env:"EXPORT_FONT_PATH"`
	MaxUploadMB int64  `yaml:"max_upload_mb" env:"EXPORT_MAX_UPLOAD_MB" env-default:"10"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
