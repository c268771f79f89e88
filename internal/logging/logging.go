// Package logging builds the zerolog logger used for diagnostics. Results are
// printed to stdout by the commands; logs always go to a separate writer.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Option configures the logger returned by New.
type Option func(*options)

type options struct {
	level zerolog.Level
	json  bool
}

// WithLevel sets the minimum level from its name; see ParseLevel.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = ParseLevel(level)
	}
}

// WithJSON emits raw JSON lines instead of the console format.
func WithJSON(enabled bool) Option {
	return func(o *options) {
		o.json = enabled
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts ...Option) zerolog.Logger {
	o := options{level: zerolog.InfoLevel}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	if !o.json {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !isTerminal(w)}
	}
	return zerolog.New(w).Level(o.level).With().Timestamp().Logger()
}

// ParseLevel converts "debug", "info", "warn", "error" (any case) to a
// zerolog level. Unknown strings default to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
