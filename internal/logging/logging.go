package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level controls which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is a structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// WithField attaches a single key/value pair to a log entry.
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// WithFields expands a map into fields. Convenience for call sites that
// already have several values.
func WithFields(fields map[string]interface{}) []Field {
	out := make([]Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, Field{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Logger writes leveled, structured log lines to stderr.
type Logger struct {
	mu    sync.Mutex
	level Level
}

// New creates a logger that emits entries at or above the given level.
func New(level Level) *Logger {
	return &Logger{level: level}
}

func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.log(LevelInfo, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.log(LevelWarn, msg, fields...) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(LevelError, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	for _, f := range fields {
		switch v := f.(type) {
		case Field:
			writeField(&b, v)
		case []Field:
			for _, inner := range v {
				writeField(&b, inner)
			}
		}
	}

	l.mu.Lock()
	fmt.Fprintln(os.Stderr, b.String())
	l.mu.Unlock()
}

func writeField(b *strings.Builder, f Field) {
	b.WriteString(" ")
	b.WriteString(f.Key)
	b.WriteString("=")
	switch v := f.Value.(type) {
	case string:
		if strings.ContainsAny(v, " =") {
			fmt.Fprintf(b, "%q", v)
		} else {
			b.WriteString(v)
		}
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
