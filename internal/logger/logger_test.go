package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	t.Run("sets debug level", func(t *testing.T) {
		SetLevel("debug")
		require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("sets warn level", func(t *testing.T) {
		SetLevel("warn")
		require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	})

	t.Run("defaults to info for unknown level", func(t *testing.T) {
		SetLevel("whatever")
		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	SetLevel("info")
}

func TestWith(t *testing.T) {
	log := With("store")
	log.Info().Msg("component logger works")
	require.NotNil(t, log)
}

func TestSetJSON(t *testing.T) {
	SetJSON()
	require.NotNil(t, Log)
}
