// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Default values applied when the corresponding variable is unset.
const (
	DefaultListenAddr = ":8080"
	DefaultBaseURL    = "http://localhost:8080"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL  string
	GeminiAPIKey string
	ListenAddr   string
	BaseURL      string
	LogLevel     string
	LogJSON      bool

	// Telemetry is off unless OTEL_EXPORTER selects an exporter.
	OTELExporter string // "", "stdout" or "otlp"
	OTELEndpoint string
	OTELProtocol string // "http" or "grpc"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		ListenAddr:   os.Getenv("LISTEN_ADDR"),
		BaseURL:      strings.TrimRight(os.Getenv("BASE_URL"), "/"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogJSON:      os.Getenv("LOG_JSON") == "true",
		OTELExporter: os.Getenv("OTEL_EXPORTER"),
		OTELEndpoint: os.Getenv("OTEL_ENDPOINT"),
		OTELProtocol: os.Getenv("OTEL_PROTOCOL"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.OTELProtocol == "" {
		cfg.OTELProtocol = "http"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AIEnabled reports whether a Gemini API key was configured. Without one
// the extraction and advice endpoints degrade instead of failing startup.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

// validate checks that all required configuration is present and coherent.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("BASE_URL is not a valid URL: %v", err))
	}

	switch c.OTELExporter {
	case "", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be empty, 'stdout' or 'otlp', got %q", c.OTELExporter))
	}

	switch c.OTELProtocol {
	case "http", "grpc":
	default:
		errs = append(errs, fmt.Sprintf("OTEL_PROTOCOL must be 'http' or 'grpc', got %q", c.OTELProtocol))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
