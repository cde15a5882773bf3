// Package logging provides structured logging for filedash.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/filedash/filedash/internal/constants"
)

// Options configures process-wide log output.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	Level string

	// File enables a rotating log file at this path (empty = console only).
	File string

	// Console is where human-readable output goes. Defaults to os.Stderr
	// so stdout stays clean for command output.
	Console io.Writer
}

var (
	outputMu sync.RWMutex
	output   io.Writer = newConsoleWriter(os.Stderr)
	fileSink *lumberjack.Logger
)

func newConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
}

// Configure sets the global level and output for loggers created afterwards.
// It returns a close function that flushes and closes the log file, if any.
func Configure(opts Options) (func() error, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var writer io.Writer = newConsoleWriter(console)
	var sink *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		sink = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    constants.LogMaxSizeMB,
			MaxBackups: constants.LogMaxBackups,
			MaxAge:     constants.LogMaxAgeDays,
			Compress:   true,
		}
		// File gets JSON lines; console stays human readable
		writer = zerolog.MultiLevelWriter(writer, sink)
	}

	outputMu.Lock()
	if fileSink != nil {
		_ = fileSink.Close()
	}
	output = writer
	fileSink = sink
	outputMu.Unlock()

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	closeFn := func() error {
		if sink == nil {
			return nil
		}
		return sink.Close()
	}
	return closeFn, nil
}

// Logger wraps zerolog with a component tag.
type Logger struct {
	zlog      zerolog.Logger
	component string
}

// NewLogger creates a logger tagged with component.
func NewLogger(component string) *Logger {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()

	ctx := zerolog.New(w).With().Timestamp()
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	return &Logger{zlog: ctx.Logger(), component: component}
}

// NewWithWriter creates a logger that writes JSON lines to w. Used by tests
// that assert on log output.
func NewWithWriter(component string, w io.Writer) *Logger {
	return &Logger{
		zlog:      zerolog.New(w).With().Str("component", component).Logger(),
		component: component,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Component returns the component tag.
func (l *Logger) Component() string {
	return l.component
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Sub returns a child logger for a subcomponent, e.g. "engine.catalog".
func (l *Logger) Sub(name string) *Logger {
	component := name
	if l.component != "" {
		component = l.component + "." + name
	}
	return &Logger{
		zlog:      l.zlog.With().Str("component", component).Logger(),
		component: component,
	}
}

// Debugf logs a debug message with printf-style formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
