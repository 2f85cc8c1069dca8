// Package logging builds the zerolog logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New returns a console logger writing to stderr at the given level.
func New(rawLevel string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, rawLevel)
}

// NewWithWriter returns a console logger writing to w.
func NewWithWriter(w io.Writer, rawLevel string) (zerolog.Logger, error) {
	level, err := ParseLevel(rawLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("%-5s", i))
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel converts a level name into a zerolog level.
func ParseLevel(rawLevel string) (zerolog.Level, error) {
	if strings.TrimSpace(rawLevel) == "" {
		rawLevel = DefaultLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(rawLevel)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", rawLevel, err)
	}
	return level, nil
}

// Component derives a child logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
