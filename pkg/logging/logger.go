// Package logging provides the leveled JSON logger used across the pipeline.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents a logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a Level.
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

// ParseLevel maps a config string onto a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Entry is one structured log line.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger writes structured JSON entries. It is safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	level     Level
	out       io.Writer
	component string
}

// New creates a logger writing to out at the given level.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{level: level, out: out}
}

// WithComponent returns a logger that tags entries with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{level: l.level, out: l.out, component: name}
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, fields map[string]any) { l.log(DEBUG, msg, fields) }

// Info logs at INFO level.
func (l *Logger) Info(msg string, fields map[string]any) { l.log(INFO, msg, fields) }

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, fields map[string]any) { l.log(WARN, msg, fields) }

// Error logs at ERROR level.
func (l *Logger) Error(msg string, fields map[string]any) { l.log(ERROR, msg, fields) }

func (l *Logger) log(level Level, msg string, fields map[string]any) {
	if l == nil || level < l.level {
		return
	}
	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
		Fields:    fields,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":"ERROR","message":"log marshal failed: %v"}`, err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(data, '\n'))
}
