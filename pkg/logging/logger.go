// Package logging provides the structured logger used throughout the SDK.
//
// The Logger interface keeps the rest of the library decoupled from the
// concrete backend. The default implementation is backed by uber-go/zap;
// NewNop returns a logger that discards everything, for tests and for
// callers that bring their own logging.
package logging

import (
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging interface used by the SDK.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithFields returns a logger that attaches the given fields to every entry.
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors for common types.

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err.Error()}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// nopLogger discards all log entries.
type nopLogger struct{}

// NewNop returns a logger that discards everything.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field)       {}
func (nopLogger) Info(string, ...Field)        {}
func (nopLogger) Warn(string, ...Field)        {}
func (nopLogger) Error(string, ...Field)       {}
func (n nopLogger) WithFields(...Field) Logger { return n }
