// Package log provides structured logging for photon.
//
// Entries are single lines of the form
//
//	2025-12-06T10:45:00 [ERROR] [gateway] message key=value key2="two words"
//
// written to a file (stdout belongs to the terminal UI), kept in a bounded
// in-memory history, and published to listeners such as the debug overlay.
// Logging is off until Init or InitWriter is called.
package log

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/photonhq/photon/internal/pubsub"
)

// Level represents log severity.
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

// ParseLevel converts a level name into a Level. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatConfig    Category = "config"    // Configuration loading/saving
	CatGateway   Category = "gateway"   // Remote search/generate/execute calls
	CatWorkflow  Category = "workflow"  // Workflow state machine transitions
	CatNotebook  Category = "notebook"  // Artifact parsing and export
	CatSelection Category = "selection" // Dataset selection channel
	CatWatcher   Category = "watcher"   // Config file watcher events
	CatUI        Category = "ui"        // UI component updates
	CatMode      Category = "mode"      // Mode controller events
	CatCache     Category = "cache"     // Search cache operations
	CatTrace     Category = "trace"     // Tracing provider lifecycle
)

// HistorySize is how many recent entries Recent returns at most.
const HistorySize = 500

const redacted = "[redacted]"

// secretKeys are field names whose values never reach the log.
var secretKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"x-api-key":     true,
	"authorization": true,
	"token":         true,
	"password":      true,
}

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
	now      func() time.Time

	// history is a ring of the last HistorySize entries; next is the slot
	// the following entry goes into.
	history []string
	next    int
	full    bool

	broker *pubsub.Broker[string]
}

var defaultLogger *Logger

func newLogger(w io.Writer, minLevel Level) *Logger {
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: minLevel,
		now:      time.Now,
		history:  make([]string, HistorySize),
		broker:   pubsub.NewBroker[string](),
	}
}

// Init opens path through tea.LogToFile and logs every level to it. The
// returned cleanup closes the file.
func Init(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defaultLogger = newLogger(f, LevelDebug)
	return func() { _ = f.Close() }, nil
}

// InitWriter installs a logger that writes to w. Intended for tests and
// headless commands that log to stderr.
func InitWriter(w io.Writer, minLevel Level) {
	defaultLogger = newLogger(w, minLevel)
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := defaultLogger; l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs msg with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	var v any = "<nil>"
	if err != nil {
		v = err
	}
	log(LevelError, cat, msg, append(fields, "error", v)...)
}

// Recent returns up to HistorySize of the latest entries, oldest first.
func Recent() []string {
	l := defaultLogger
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		return append([]string(nil), l.history[:l.next]...)
	}
	out := make([]string, 0, len(l.history))
	out = append(out, l.history[l.next:]...)
	return append(out, l.history[:l.next]...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	if !l.enabled || level < l.minLevel {
		l.mu.Unlock()
		return
	}
	entry := formatEntry(l.now(), level, cat, msg, fields)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	l.history[l.next] = entry
	l.next = (l.next + 1) % len(l.history)
	if l.next == 0 {
		l.full = true
	}
	broker := l.broker
	l.mu.Unlock()

	broker.Publish(pubsub.CreatedEvent, entry)
}

func formatEntry(ts time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	b.WriteString(ts.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)

	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		if secretKeys[strings.ToLower(key)] {
			b.WriteString(redacted)
			continue
		}
		b.WriteString(formatValue(fields[i+1]))
	}
	// An orphan key is kept so the mistake is visible.
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// formatValue renders v, quoting it when it would otherwise be ambiguous.
func formatValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case error:
		s = x.Error()
	case time.Duration:
		return x.String()
	case fmt.Stringer:
		s = x.String()
	default:
		return fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener creates a new log event listener, or returns nil when logging
// has not been initialized. The listener stops when ctx is cancelled.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker)
}
