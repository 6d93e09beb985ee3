package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]interface{}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	std              = NewLoggerV2("pharmacy-service")
)

// Configure sets the global level and output format. Format "console"
// produces human-readable lines; anything else produces JSON.
func Configure(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	mu.Lock()
	defer mu.Unlock()
	if format == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		output = os.Stdout
	}
	std = newLogger(output, "pharmacy-service")
}

// SetOutput redirects every logger created afterwards.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	std = newLogger(output, "pharmacy-service")
}

// LoggerV2 is a structured logger bound to a component name.
type LoggerV2 struct {
	zl zerolog.Logger
}

// NewLoggerV2 creates a logger tagged with the given service/component name.
func NewLoggerV2(service string) *LoggerV2 {
	mu.RLock()
	w := output
	mu.RUnlock()
	return newLogger(w, service)
}

// New creates a logger writing to w.
func New(w io.Writer, service string) *LoggerV2 {
	return newLogger(w, service)
}

func newLogger(w io.Writer, service string) *LoggerV2 {
	return &LoggerV2{
		zl: zerolog.New(w).With().Timestamp().Str("service", service).Logger(),
	}
}

// With returns a child logger that always carries fields.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	return &LoggerV2{zl: l.zl.With().Fields(map[string]interface{}(fields)).Logger()}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	write(l.zl.Debug(), msg, fields)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	write(l.zl.Info(), msg, fields)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	write(l.zl.Warn(), msg, fields)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	write(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	write(l.zl.WithLevel(zerolog.FatalLevel), msg, fields)
	os.Exit(1)
}

func write(e *zerolog.Event, msg string, fields []Fields) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}

// Info logs through the process-wide logger.
func Info(msg string, fields ...Fields) {
	mu.RLock()
	l := std
	mu.RUnlock()
	l.Info(msg, fields...)
}

// Infof logs a formatted message through the process-wide logger.
func Infof(format string, args ...interface{}) {
	Info(fmt.Sprintf(format, args...))
}
