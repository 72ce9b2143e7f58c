package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Fields carries structured context attached to a single log event.
type Fields map[string]interface{}

// Logger is the logging interface injected into every client and the
// pipeline. The core never logs through a package-level global, so tests can
// substitute a capturing implementation and assert on emitted fields.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
	With(component string) Logger
}

type zeroLogger struct {
	log zerolog.Logger
}

// New creates a zerolog-backed Logger writing JSON to the given writer.
// Level is one of debug/info/warn/error; anything else falls back to info.
func New(w io.Writer, level string) Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &zeroLogger{log: zl}
}

func (l *zeroLogger) emit(ev *zerolog.Event, msg string, fields Fields) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *zeroLogger) Debug(msg string, fields Fields) { l.emit(l.log.Debug(), msg, fields) }
func (l *zeroLogger) Info(msg string, fields Fields)  { l.emit(l.log.Info(), msg, fields) }
func (l *zeroLogger) Warn(msg string, fields Fields)  { l.emit(l.log.Warn(), msg, fields) }
func (l *zeroLogger) Error(msg string, fields Fields) { l.emit(l.log.Error(), msg, fields) }

func (l *zeroLogger) With(component string) Logger {
	return &zeroLogger{log: l.log.With().Str("component", component).Logger()}
}

// Entry is one captured log event, used by the test logger.
type Entry struct {
	Level     string
	Message   string
	Fields    Fields
	Component string
}

// TestLogger records every event so tests can assert on levels, messages and
// fields instead of scraping stdout text.
type TestLogger struct {
	mu        sync.Mutex
	entries   []Entry
	component string
}

// NewTestLogger returns an empty capturing logger.
func NewTestLogger() *TestLogger { return &TestLogger{} }

func (t *TestLogger) record(level, msg string, fields Fields, component string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Level: level, Message: msg, Fields: fields, Component: component})
}

func (t *TestLogger) Debug(msg string, fields Fields) { t.record("debug", msg, fields, t.component) }
func (t *TestLogger) Info(msg string, fields Fields)  { t.record("info", msg, fields, t.component) }
func (t *TestLogger) Warn(msg string, fields Fields)  { t.record("warn", msg, fields, t.component) }
func (t *TestLogger) Error(msg string, fields Fields) { t.record("error", msg, fields, t.component) }

func (t *TestLogger) With(component string) Logger {
	return &childTestLogger{parent: t, component: component}
}

// Entries returns a copy of everything logged so far.
func (t *TestLogger) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// HasEntry reports whether any captured event matches level and message.
func (t *TestLogger) HasEntry(level, msg string) bool {
	for _, e := range t.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

type childTestLogger struct {
	parent    *TestLogger
	component string
}

func (c *childTestLogger) Debug(msg string, fields Fields) {
	c.parent.record("debug", msg, fields, c.component)
}
func (c *childTestLogger) Info(msg string, fields Fields) {
	c.parent.record("info", msg, fields, c.component)
}
func (c *childTestLogger) Warn(msg string, fields Fields) {
	c.parent.record("warn", msg, fields, c.component)
}
func (c *childTestLogger) Error(msg string, fields Fields) {
	c.parent.record("error", msg, fields, c.component)
}

func (c *childTestLogger) With(component string) Logger {
	return &childTestLogger{parent: c.parent, component: component}
}
