package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// NewJSONLogger creates a JSON logger writing to w at the given level.
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{
		writer: w,
		level:  level,
		mu:     &sync.Mutex{},
	}
}

// NewStderrLogger creates a logger honouring LOG_LEVEL, writing to stderr so
// command output on stdout stays machine-readable.
func NewStderrLogger() *JSONLogger {
	level := InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		level = ParseLevel(s)
	}
	return NewJSONLogger(os.Stderr, level)
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := newEntry(level, msg, l.fields, fields)
	entry.Time = time.Now().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] failed to marshal log entry: %v\n", err)
		return
	}
	data = append(data, '\n')
	l.writer.Write(data)
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// With returns a child logger sharing the writer and lock.
func (l *JSONLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &JSONLogger{
		writer: l.writer,
		level:  l.level,
		fields: merged,
		mu:     l.mu,
	}
}

func (l *JSONLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *JSONLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// StartTimer begins timing an operation logged at Info when it ends.
func StartTimer(logger Logger, msg string, fields ...Field) *Timer {
	now := time.Now()
	return &Timer{
		logger: OrNop(logger),
		msg:    msg,
		start:  now,
		mark:   now,
		fields: fields,
	}
}

// Lap closes the current phase, logs it at Debug with the timer's fields and
// returns how long the phase took.
func (t *Timer) Lap(phase string, extra ...Field) time.Duration {
	now := time.Now()
	elapsed := now.Sub(t.mark)
	t.mark = now
	t.laps = append(t.laps, lap{phase: phase, elapsed: elapsed})

	fields := make([]Field, 0, len(t.fields)+len(extra)+2)
	fields = append(fields, t.fields...)
	fields = append(fields, Phase(phase))
	fields = append(fields, extra...)
	fields = append(fields, Latency(elapsed))
	t.logger.Debug("phase finished", fields...)
	return elapsed
}

// Laps returns the phase durations recorded so far, keyed by phase. A phase
// lapped twice accumulates.
func (t *Timer) Laps() map[string]time.Duration {
	out := make(map[string]time.Duration, len(t.laps))
	for _, l := range t.laps {
		out[l.phase] += l.elapsed
	}
	return out
}

// End logs the operation with its latency, any extra fields and, when the
// timer was lapped, the per-phase latencies.
func (t *Timer) End(extra ...Field) time.Duration {
	elapsed := time.Since(t.start)
	fields := make([]Field, 0, len(t.fields)+len(extra)+2)
	fields = append(fields, t.fields...)
	fields = append(fields, extra...)
	if len(t.laps) > 0 {
		phases := make(map[string]string, len(t.laps))
		for phase, d := range t.Laps() {
			phases[phase] = d.String()
		}
		fields = append(fields, Any("phases", phases))
	}
	fields = append(fields, Latency(elapsed))
	t.logger.Info(t.msg, fields...)
	return elapsed
}
