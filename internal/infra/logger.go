package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the service logger writing to stdout.
func NewLogger(development bool) zerolog.Logger {
	return NewLoggerTo(os.Stdout, development)
}

// NewLoggerTo constructs a logger writing to w. Development gets debug level
// and human-readable console output; otherwise JSON at info level.
func NewLoggerTo(w io.Writer, development bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if development {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "fundme").
		Logger()

	if development {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stdout})
	}

	return logger
}
