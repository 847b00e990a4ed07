// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global zerolog logger. Outside production the output is a
// human readable console writer; in production it is JSON.
func Setup(env, level string) zerolog.Logger {
	return SetupWriter(os.Stderr, env, level)
}

func SetupWriter(w io.Writer, env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))

	out := w
	if !strings.EqualFold(env, "production") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel falls back to info for unknown values.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
