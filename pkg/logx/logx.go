// Package logx provides structured logging with component-scoped loggers and
// context-aware debug filtering.
package logx

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes timestamped, component-tagged log lines to stderr.
type Logger struct {
	component string
	logger    *log.Logger
}

// Level identifies the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is a structured log record kept in the in-memory buffer.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Component string `json:"component"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

type ringBuffer struct {
	entries []Entry
	mu      sync.RWMutex
	maxSize int
}

// Global debug configuration and recent-entry buffer.
var (
	debugEnabled bool
	debugDomains map[string]bool // nil = all domains
	debugMu      sync.RWMutex

	buffer = &ringBuffer{maxSize: 1000}
)

func init() { //nolint:gochecknoinits // env var initialization
	if v := os.Getenv("DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		debugEnabled = true
	}
	if domains := os.Getenv("DEBUG_DOMAINS"); domains != "" {
		debugDomains = make(map[string]bool)
		for _, d := range strings.Split(domains, ",") {
			debugDomains[strings.TrimSpace(d)] = true
		}
	}
}

// NewLogger returns a logger tagged with the given component name
// (e.g. "engine", "research", "writer").
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		logger:    log.New(os.Stderr, "", 0), // stderr keeps stdout clean for CLI output
	}
}

// SetDebug enables or disables debug logging globally.
func SetDebug(enabled bool) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
}

// IsDebugEnabledFor reports whether debug logging is active for a component.
func IsDebugEnabledFor(component string) bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	if !debugEnabled {
		return false
	}
	if debugDomains == nil {
		return true
	}
	return debugDomains[component]
}

func (b *ringBuffer) add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	if len(b.entries) > b.maxSize {
		b.entries = b.entries[len(b.entries)-b.maxSize:]
	}
}

// RecentEntries returns a copy of buffered entries, optionally filtered by
// component and minimum timestamp.
func RecentEntries(component string, since time.Time) []Entry {
	buffer.mu.RLock()
	defer buffer.mu.RUnlock()

	out := make([]Entry, 0, len(buffer.entries))
	for i := range buffer.entries {
		e := &buffer.entries[i]
		if component != "" && !strings.EqualFold(e.Component, component) {
			continue
		}
		if !since.IsZero() {
			ts, err := time.Parse(timeFormat, e.Timestamp)
			if err != nil || ts.Before(since) {
				continue
			}
		}
		out = append(out, *e)
	}
	return out
}

const timeFormat = "2006-01-02T15:04:05.000Z"

func (l *Logger) log(level Level, format string, args ...any) {
	ts := time.Now().UTC().Format(timeFormat)
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s: %s", ts, l.component, level, msg)

	buffer.add(Entry{
		Timestamp: ts,
		Component: l.component,
		Level:     string(level),
		Message:   msg,
	})
}

func (l *Logger) Debug(format string, args ...any) {
	if !IsDebugEnabledFor(l.component) {
		return
	}
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Component returns the component name this logger is tagged with.
func (l *Logger) Component() string {
	return l.component
}

var defaultLogger = NewLogger("system")

func Infof(format string, args ...any)  { defaultLogger.Info(format, args...) }
func Warnf(format string, args ...any)  { defaultLogger.Warn(format, args...) }
func Debugf(format string, args ...any) { defaultLogger.Debug(format, args...) }

// Errorf logs and returns the formatted error. Use when both logging and
// returning are needed:
//
//	return logx.Errorf("load policy: %w", err)
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	defaultLogger.Error("%s", err.Error())
	return err
}

// Wrap logs msg + ": " + err.Error() and returns the wrapped error.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", msg, err)
	defaultLogger.Error("%s", wrapped.Error())
	return wrapped
}
