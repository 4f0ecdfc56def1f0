package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	base  zerolog.Logger
	ready bool
)

// Options configures the global logger.
//
// Fields:
//   - Level: debug|info|warn|error (default: info)
//   - Pretty: human-readable console output instead of JSON lines
//   - Out: destination writer (default: os.Stderr, keeping stdout for reports)
type Options struct {
	Level  string
	Pretty bool
	Out    io.Writer
}

// Init configures the global logger. The CLI tools print for a human at a
// terminal, so cmd usually turns Pretty on; JSON stays available for CI logs.
func Init(opts Options) {
	level := parseLevel(opts.Level)

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	w := out
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	base = zerolog.New(w).With().Timestamp().Logger().Level(level)
	ready = true
}

// L returns the global logger. Call Init() once on startup.
func L() *zerolog.Logger {
	if !ready {
		Init(Options{Level: "info"})
	}
	return &base
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
