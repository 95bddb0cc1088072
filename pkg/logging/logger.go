// Package logging configures zerolog for the WordPress reader and hands out
// component loggers.
//
// Library packages never configure logging themselves. They log through
// NewLogger, which derives from the global logger, so whatever Setup
// installed (or zerolog's default) decides where records go.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a minimum severity by name.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var levels = map[LogLevel]zerolog.Level{
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// aliases accepted by ParseLevel in addition to the canonical names.
var aliases = map[string]LogLevel{
	"":        LevelInfo,
	"warning": LevelWarn,
}

// Zerolog returns the zerolog level. Unknown names map to info.
func (l LogLevel) Zerolog() zerolog.Level {
	if lvl, ok := levels[LogLevel(strings.ToLower(string(l)))]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}

// ParseLevel validates a level name such as "debug" or "WARN".
func ParseLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if lvl, ok := aliases[name]; ok {
		return lvl, nil
	}
	if _, ok := levels[LogLevel(name)]; ok {
		return LogLevel(name), nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the global logger and level and returns the logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.Level.Zerolog())

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// NewLogger returns a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Levels in use:
//
//	debug  single requests, probes and discovered windows, fetched pages
//	info   stream start and completion, empty collections, server lifecycle
//	warn   failed page fetches, failed probes, settings and item fetches
//	error  aborted streams, upstream failures behind the proxy
//
// Common fields: component, site, url, segment, page, status_code,
// total_pages, concurrency, duration, error_class.
