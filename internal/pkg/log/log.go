package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// Level controls which messages are written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu       sync.Mutex
	out      io.Writer = os.Stdout
	minLevel           = LevelInfo

	debugTag = color.New(color.FgWhite, color.BgBlue).SprintFunc()
	infoTag  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnTag  = color.New(color.FgWhite, color.BgYellow).SprintFunc()
	errorTag = color.New(color.FgRed).SprintFunc()
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Unknown values map to info.
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

// SetLevel sets the minimum level written by the package.
func SetLevel(l Level) {
	mu.Lock()
	minLevel = l
	mu.Unlock()
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestID returns the request id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func write(level Level, tag, requestID, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}
	msg := fmt.Sprintf(format, a...)
	if requestID != "" {
		msg = fmt.Sprintf("[req_id=%s] %s", requestID, msg)
	}
	fmt.Fprintf(out, "%s %s\n", tag, msg)
}

// Debug log debug details
func Debug(format string, a ...interface{}) {
	write(LevelDebug, debugTag("[DEBUG]"), "", format, a...)
}

// Info log information
func Info(format string, a ...interface{}) {
	write(LevelInfo, infoTag("[INFO] "), "", format, a...)
}

// InfoWithContext logs information with context (includes request ID if available)
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	write(LevelInfo, infoTag("[INFO] "), RequestID(ctx), format, a...)
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	write(LevelWarn, warnTag("[WARN] "), "", format, a...)
}

// WarnWithContext logs warning with context (includes request ID if available)
func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	write(LevelWarn, warnTag("[WARN] "), RequestID(ctx), format, a...)
}

// Error log error
func Error(format string, a ...interface{}) {
	write(LevelError, errorTag("[Error]"), "", format, a...)
}

// ErrorWithContext logs error with context (includes request ID if available)
func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	write(LevelError, errorTag("[Error]"), RequestID(ctx), format, a...)
}

// Dump writes a spew dump of the values at debug level.
func Dump(a ...interface{}) {
	write(LevelDebug, debugTag("[DEBUG]"), "", "%s", spew.Sdump(a...))
}
