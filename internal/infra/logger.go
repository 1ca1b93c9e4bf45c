package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs a zerolog.Logger for the given environment. The
// service name is attached to every event.
func NewLogger(appEnv string, service string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

// Logger aliases zerolog.Logger so packages can depend on the logging
// contract through infra.
type Logger = zerolog.Logger

// LoggerOrDiscard returns l, or a logger that drops everything when l is nil.
func LoggerOrDiscard(l *Logger) *Logger {
	if l != nil {
		return l
	}
	discard := zerolog.New(io.Discard)
	return &discard
}
