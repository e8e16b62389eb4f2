package logging

import "sync"

// MemoryLogger records entries in memory. Tests use it to assert on what
// was logged.
type MemoryLogger struct {
	mu      *sync.Mutex
	level   Level
	fields  []Field
	entries *[]Entry
}

// NewMemoryLogger creates a recording logger at DebugLevel.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		mu:      &sync.Mutex{},
		level:   DebugLevel,
		entries: &[]Entry{},
	}
}

func (m *MemoryLogger) record(level Level, msg string, fields []Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level < m.level {
		return
	}
	*m.entries = append(*m.entries, newEntry(level, msg, m.fields, fields))
}

func (m *MemoryLogger) Debug(msg string, fields ...Field) { m.record(DebugLevel, msg, fields) }
func (m *MemoryLogger) Info(msg string, fields ...Field)  { m.record(InfoLevel, msg, fields) }
func (m *MemoryLogger) Warn(msg string, fields ...Field)  { m.record(WarnLevel, msg, fields) }
func (m *MemoryLogger) Error(msg string, fields ...Field) { m.record(ErrorLevel, msg, fields) }

func (m *MemoryLogger) With(fields ...Field) Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	merged := append(append([]Field{}, m.fields...), fields...)
	return &MemoryLogger{mu: m.mu, level: m.level, fields: merged, entries: m.entries}
}

func (m *MemoryLogger) SetLevel(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

func (m *MemoryLogger) GetLevel() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Entries returns a copy of everything recorded so far.
func (m *MemoryLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), (*m.entries)...)
}

// Messages returns the messages logged at the given level.
func (m *MemoryLogger) Messages(level Level) []string {
	var out []string
	for _, e := range m.Entries() {
		if e.Level == level.String() {
			out = append(out, e.Message)
		}
	}
	return out
}
