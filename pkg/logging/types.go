package logging

import (
	"io"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DebugLevel
	case "INFO", "info":
		return InfoLevel
	case "WARN", "warn", "WARNING", "warning":
		return WarnLevel
	case "ERROR", "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface used across the engine.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger that prepends the given fields.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// JSONLogger writes one JSON object per line.
type JSONLogger struct {
	writer io.Writer
	level  Level
	fields []Field
	mu     *sync.Mutex
}

// Entry is the JSON shape of one log line. The routing keys a topology log
// is usually filtered by (component, operation and auto-configure phase)
// are lifted out of Fields onto the entry itself.
type Entry struct {
	Time      string         `json:"time"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Operation string         `json:"operation,omitempty"`
	Phase     string         `json:"phase,omitempty"`
	Message   string         `json:"msg"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// newEntry builds an entry from the logger's bound fields followed by the
// call's own; later keys win.
func newEntry(level Level, msg string, bound, fields []Field) Entry {
	e := Entry{Level: level.String(), Message: msg}
	for _, set := range [][]Field{bound, fields} {
		for _, f := range set {
			if e.lift(f) {
				continue
			}
			if e.Fields == nil {
				e.Fields = make(map[string]any, len(bound)+len(fields))
			}
			e.Fields[f.Key] = f.Value
		}
	}
	return e
}

func (e *Entry) lift(f Field) bool {
	v, ok := f.Value.(string)
	if !ok {
		return false
	}
	switch f.Key {
	case keyComponent:
		e.Component = v
	case keyOperation:
		e.Operation = v
	case keyPhase:
		e.Phase = v
	default:
		return false
	}
	return true
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (n NopLogger) With(fields ...Field) Logger     { return n }
func (NopLogger) SetLevel(level Level)              {}
func (NopLogger) GetLevel() Level                   { return InfoLevel }

// NewNopLogger returns a logger that discards all output.
func NewNopLogger() Logger {
	return NopLogger{}
}

// Timer measures a logged operation. Lap splits it into named phases: each
// lap is logged at Debug as it ends, and End reports all of them together
// with the total latency.
type Timer struct {
	logger Logger
	msg    string
	start  time.Time
	mark   time.Time
	fields []Field
	laps   []lap
}

type lap struct {
	phase   string
	elapsed time.Duration
}
