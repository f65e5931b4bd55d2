// Package logging configures the zerolog logger shared by the commands.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Environment variables read by New.
const (
	EnvLevel  = "LOG_LEVEL"  // trace, debug, info, warn, error (default info)
	EnvFormat = "LOG_FORMAT" // "console" (default) or "json"
)

// New returns a logger writing to w, configured from LOG_LEVEL and LOG_FORMAT.
// It also installs the logger as the zerolog global.
func New(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv(EnvLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var l zerolog.Logger
	if os.Getenv(EnvFormat) == "json" {
		l = zerolog.New(w).With().Timestamp().Logger().Level(level)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger().Level(level)
	}

	zlog.Logger = l
	return l
}

// Stderr returns New(os.Stderr).
func Stderr() zerolog.Logger {
	return New(os.Stderr)
}
