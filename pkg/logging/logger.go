// Package logging provides structured logging configuration using zerolog,
// plus an adapter that satisfies the graph.Logger interface.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/noverloop/koala/pkg/graph"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Adapter wraps a zerolog logger behind the graph.Logger interface so the
// client and transport can log without depending on zerolog directly.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter builds a graph.Logger backed by the given zerolog logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// NewComponentAdapter builds a graph.Logger for a named component using the
// global logger.
func NewComponentAdapter(component string) *Adapter {
	return &Adapter{logger: NewLogger(component)}
}

var _ graph.Logger = (*Adapter)(nil)

// Debug implements graph.Logger.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.emit(a.logger.Debug(), msg, fields)
}

// Info implements graph.Logger.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.emit(a.logger.Info(), msg, fields)
}

// Warn implements graph.Logger.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.emit(a.logger.Warn(), msg, fields)
}

// Error implements graph.Logger.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.emit(a.logger.Error(), msg, fields)
}

func (a *Adapter) emit(event *zerolog.Event, msg string, fields map[string]interface{}) {
	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(msg)
}

// Context Fields:
//   - method: HTTP verb of the call
//   - path: graph path (node or node/edge)
//   - status: HTTP status code
//   - code: remote error code when classification fails a call
//   - pages: number of pages walked by a pagination helper
//   - ops: number of operations in a batch
