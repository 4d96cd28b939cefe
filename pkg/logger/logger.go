// Package logger builds the zerolog logger shared by the API server and its
// background jobs.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config mirrors the LOG_LEVEL and LOG_PRETTY settings. Output defaults to stdout.
type Config struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
// Anything else is info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// New returns a logger that stamps every event with the time, the caller and
// service=bondtrading. Pretty output is uncoloured when writing somewhere other
// than stdout.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.Output != nil,
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller().
		Str("service", "bondtrading").
		Logger()
}

// SetGlobalLogger installs l as zerolog's package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
