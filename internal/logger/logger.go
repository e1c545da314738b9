package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the structured logger used across the pipeline. Every event
// is tagged with the component that emitted it.
type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

type Config struct {
	Level  string
	Format Format
	Output io.Writer
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch s {
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(s)
	case "":
		return zerolog.InfoLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
}

// New builds a zerolog backed Logger. Output defaults to stderr so it
// never mixes with data written to stdout.
func New(cfg Config) (*ZerologAdapter, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		return NewZerolog(out, level), nil
	case FormatConsole, "":
		return NewZerolog(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr}, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}

type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, string, map[string]interface{})   {}
func (nopLogger) Info(string, string, map[string]interface{})    {}
func (nopLogger) Warning(string, string, map[string]interface{}) {}
func (nopLogger) Error(string, error, map[string]interface{})    {}
