package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads all config from env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/subtrack")
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("LISTEN_ADDR", ":9090")
		t.Setenv("BASE_URL", "https://subtrack.example.com")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "postgres://localhost/subtrack", cfg.DatabaseURL)
		require.Equal(t, "test-key", cfg.GeminiAPIKey)
		require.Equal(t, ":9090", cfg.ListenAddr)
		require.Equal(t, "https://subtrack.example.com", cfg.BaseURL)
		require.Equal(t, "debug", cfg.LogLevel)
		require.True(t, cfg.AIEnabled())
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/subtrack")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("LISTEN_ADDR", "")
		t.Setenv("BASE_URL", "")
		t.Setenv("OTEL_PROTOCOL", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, DefaultListenAddr, cfg.ListenAddr)
		require.Equal(t, DefaultBaseURL, cfg.BaseURL)
		require.Equal(t, "http", cfg.OTELProtocol)
		require.False(t, cfg.AIEnabled())
	})

	t.Run("trims trailing slash from base URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/subtrack")
		t.Setenv("BASE_URL", "https://subtrack.example.com/")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "https://subtrack.example.com", cfg.BaseURL)
	})

	t.Run("requires database URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("rejects unknown otel exporter", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/subtrack")
		t.Setenv("OTEL_EXPORTER", "jaeger")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "OTEL_EXPORTER")
	})

	t.Run("rejects unknown otel protocol", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/subtrack")
		t.Setenv("OTEL_PROTOCOL", "udp")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "OTEL_PROTOCOL")
	})
}
