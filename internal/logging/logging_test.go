package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/world-explorer/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, logging.ParseLevel(" warn "))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel("chatty"))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel(""))
}

func TestSetupWriterProductionIsJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "production", "info")
	logger.Info().Str("path", "/api/auth/login").Msg("request")
	logger.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "request", entry["message"])
	require.Equal(t, "/api/auth/login", entry["path"])
	require.Equal(t, "info", entry["level"])
}

func TestSetupWriterDevIsConsole(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "DEV", "debug")
	logger.Debug().Msg("starting")

	require.Contains(t, buf.String(), "starting")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
