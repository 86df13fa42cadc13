// Package logging builds the zerolog logger shared by the client, the CLI and the mock server.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. In the DEV environment
// output is human readable, otherwise JSON lines.
func New(w io.Writer, level, env string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(env, "DEV") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Nop is the logger used when a component is given none.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
