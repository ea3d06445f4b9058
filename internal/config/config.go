// Package config loads service configuration. Values are layered
// (low -> high precedence):
//  1. defaults (New)
//  2. YAML file, if CONFIG_FILE is set
//  3. environment variables, including those from an optional .env file
//
// Empty environment variables are ignored so that an exported but blank
// variable never wipes a default.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LocalOrigins are allowed when CORS_ALLOWED_ORIGINS is not set.
var LocalOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:5173"}

// Traces exporters.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

type Config struct {
	Port     string `koanf:"port"`
	AppEnv   string `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`

	// OpenAI-compatible chat completion endpoint
	OpenAIAPIKey           string  `koanf:"openai_api_key"`
	OpenAIModel            string  `koanf:"openai_model"`
	OpenAIBaseURL          string  `koanf:"openai_base_url"`
	OpenAIMaxTokens        int     `koanf:"openai_max_tokens"`
	OpenAITemperature      float64 `koanf:"openai_temperature"`
	OpenAITimeoutSeconds   int     `koanf:"openai_timeout_seconds"`
	OpenAIStructuredOutput bool    `koanf:"openai_structured_output"`

	// Rate limiting
	RateLimitMax           int    `koanf:"rate_limit_max"`
	RateLimitWindowMinutes int    `koanf:"rate_limit_window_minutes"`
	RedisAddr              string `koanf:"redis_addr"`
	TrustProxy             bool   `koanf:"trust_proxy"`

	// CORSAllowedOrigins is a list in YAML or a comma-separated env value.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Langfuse
	LangfuseBaseURL     string `koanf:"langfuse_base_url"`
	LangfusePublicKey   string `koanf:"langfuse_public_key"`
	LangfuseSecretKey   string `koanf:"langfuse_secret_key"`
	LangfuseEnv         string `koanf:"langfuse_env"`
	LangfusePromptName  string `koanf:"langfuse_prompt_name"`
	LangfusePromptLabel string `koanf:"langfuse_prompt_label"`
	PromptCachePath     string `koanf:"prompt_cache_path"`

	OtelTracesExporter string `koanf:"otel_traces_exporter"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Port:     "8080",
		AppEnv:   "production",
		LogLevel: "info",

		OpenAIModel:          "gpt-4o-mini",
		OpenAIMaxTokens:      2000,
		OpenAITemperature:    0.7,
		OpenAITimeoutSeconds: 30,

		RateLimitMax:           30,
		RateLimitWindowMinutes: 15,

		LangfuseEnv:         "development",
		LangfusePromptLabel: "production",

		OtelTracesExporter: ExporterOTLP,
	}
}

// IsDevelopment reports whether error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// LLMConfigured reports whether the server holds an LLM credential.
func (c *Config) LLMConfigured() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// AllowedOrigins returns the CORS allow-list, falling back to LocalOrigins.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSAllowedOrigins) == 0 {
		return LocalOrigins
	}
	return c.CORSAllowedOrigins
}

func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAITimeoutSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMinutes) * time.Minute
}

// Validate rejects values the service cannot start with. A missing LLM
// credential is not an error: the server starts and answers 500
// CONFIGURATION_ERROR on analysis requests.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.OpenAIMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("openai_max_tokens must be positive, got %d", c.OpenAIMaxTokens))
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		errs = append(errs, fmt.Errorf("openai_temperature must be within [0, 2], got %g", c.OpenAITemperature))
	}
	if c.OpenAITimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("openai_timeout_seconds must be positive, got %d", c.OpenAITimeoutSeconds))
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_max must be positive, got %d", c.RateLimitMax))
	}
	if c.RateLimitWindowMinutes <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_window_minutes must be positive, got %d", c.RateLimitWindowMinutes))
	}
	switch c.OtelTracesExporter {
	case ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		errs = append(errs, fmt.Errorf("otel_traces_exporter must be one of otlp, stdout, none, got %q", c.OtelTracesExporter))
	}
	return errors.Join(errs...)
}
