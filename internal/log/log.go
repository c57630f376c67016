// Package log provides structured logging for observer.
// Entries carry a level, a category and key=value fields. Logging stays off
// until Init or InitWriter is called, which the CLI does for --debug,
// --log-file or OBSERVER_DEBUG.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/observer/internal/pubsub"
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

// ParseLevel maps a config value ("debug", "info", "warn", "error") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelDebug, fmt.Errorf("unknown log level %q", s)
	}
}

// Category groups related log messages.
type Category string

const (
	CatPublisher Category = "publisher" // Observer registration and broadcast
	CatHolder    Category = "holder"    // Value holder mutations
	CatFormatter Category = "formatter" // Formatter output
	CatConfig    Category = "config"    // Configuration loading/saving
	CatWatcher   Category = "watcher"   // File watcher events
	CatTrace     Category = "trace"     // Tracing provider and exporters
	CatCLI       Category = "cli"       // Command execution
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	minLevel Level
	broker   *pubsub.Broker[string] // Pub/sub for log events
}

// listenerBuffer is how many entries a slow listener may fall behind
// before it starts missing them.
const listenerBuffer = 256

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Init opens path for appending and installs it as the global log sink.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(&Logger{
		file:     f,
		writer:   f,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](listenerBuffer),
	})
	return func() { _ = f.Close() }, nil
}

// InitWriter installs w as the global log sink. A nil writer keeps the
// logger enabled for listeners only.
func InitWriter(w io.Writer) {
	install(&Logger{
		writer:   w,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](listenerBuffer),
	})
}

// Reset disables logging and drops the global logger.
func Reset() {
	install(nil)
}

func install(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil && defaultLogger.broker != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = l
}

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
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

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	entry := format(time.Now(), level, cat, msg, fields...)

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}

	// Publish event to subscribers (non-blocking)
	if l.broker != nil {
		l.broker.Publish(entry)
	}
}

// format renders one entry.
// Format: 2025-12-06T10:45:00 [WARN] [holder] message key=value key2=value2
func format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", ts.Format("2006-01-02T15:04:05"), level, cat, msg)

	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	// Handle odd field count - append orphan key with no value
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

// LogListener reads log events in publish order.
type LogListener = pubsub.Listener[string]

// NewListener subscribes to log entries. Returns nil when logging has not
// been initialized. The subscription ends when ctx is cancelled.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil || l.broker == nil {
		return nil
	}
	return pubsub.NewListener(ctx, l.broker)
}

// Dropped returns how many entries listeners missed because they fell
// behind. It is zero when logging has not been initialized.
func Dropped() uint64 {
	l := current()
	if l == nil || l.broker == nil {
		return 0
	}
	return l.broker.Dropped()
}
