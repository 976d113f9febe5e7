// Package logging implements leveled console output plus an
// independently-filtered database sink, neither of which is ever
// allowed to fail the caller's request.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Level mirrors ordering: debug < info < notice < warning <
// error < critical < alert < fatal. slog's Level is just an int, so
// these are spaced out wide enough to leave room between them.
const (
	LevelDebug    slog.Level = -8
	LevelInfo     slog.Level = 0
	LevelNotice   slog.Level = 2
	LevelWarning  slog.Level = 4
	LevelError    slog.Level = 8
	LevelCritical slog.Level = 12
	LevelAlert    slog.Level = 16
	LevelFatal    slog.Level = 20
)

var levelNames = map[slog.Level]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelNotice:   "NOTICE",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
	LevelAlert:    "ALERT",
	LevelFatal:    "FATAL",
}

// DBWriter persists a single log entry to the role_manager_logs table. It is
// a narrow port so the logger doesn't need the full store.Port surface.
type DBWriter interface {
	WriteLog(ctx context.Context, level string, message string, payload map[string]any) error
}

// Logger implements independently-leveled console/database logging on
// top of log/slog, built from configuration.
type Logger struct {
	console      *slog.Logger
	consoleLevel slog.Level
	db           DBWriter
	dbLevel      slog.Level
	errSink      func(error)
}

// ParseLevel resolves one of the eight level names (case-insensitive)
// to its slog.Level, for turning config.Options' string fields into
// the levels New expects.
func ParseLevel(name string) (slog.Level, error) {
	for level, n := range levelNames {
		if strings.EqualFold(n, name) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("logging: unknown level %q", name)
}

// New builds a Logger writing console output to stderr. format selects
// "json" (slog.NewJSONHandler) or anything else for slog.NewTextHandler,
// matching internal/app/logger.go's LogFormat switch.
func New(format string, consoleLevel, dbLevel slog.Level) *Logger {
	opts := &slog.HandlerOptions{AddSource: true, Level: LevelDebug}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return &Logger{
		console:      slog.New(handler),
		consoleLevel: consoleLevel,
		dbLevel:      dbLevel,
		errSink:      func(err error) { fmt.Fprintln(os.Stderr, "logging: db sink failed:", err) },
	}
}

// SetConsoleLevel updates the console floor.
func (l *Logger) SetConsoleLevel(level slog.Level) { l.consoleLevel = level }

// SetDBLevel updates the database floor.
func (l *Logger) SetDBLevel(level slog.Level) { l.dbLevel = level }

// AttachDB wires the database sink. Until called, Log only writes console.
func (l *Logger) AttachDB(w DBWriter) { l.db = w }

// Log records a message at the given level, with optional structured
// context. forceDB bypasses the db-level filter.
func (l *Logger) Log(ctx context.Context, level slog.Level, message string, fields map[string]any, forceDB bool) {
	if level >= l.consoleLevel {
		args := make([]any, 0, len(fields)*2+2)
		args = append(args, slog.String("level_name", levelNames[level]))
		for k, v := range fields {
			args = append(args, slog.Any(k, v))
		}
		l.console.Log(ctx, level, message, args...)
	}

	if l.db == nil {
		return
	}
	if !forceDB && level < l.dbLevel {
		return
	}
	if err := l.db.WriteLog(ctx, levelNames[level], message, fields); err != nil {
		// A log-write failure must never propagate: degrade
		// to the process's error channel.
		l.errSink(err)
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelDebug, msg, fields, false)
}
func (l *Logger) Info(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelInfo, msg, fields, false)
}
func (l *Logger) Notice(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelNotice, msg, fields, false)
}
func (l *Logger) Warning(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelWarning, msg, fields, false)
}
func (l *Logger) Error(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelError, msg, fields, false)
}
func (l *Logger) Critical(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelCritical, msg, fields, true)
}
func (l *Logger) Alert(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelAlert, msg, fields, true)
}
func (l *Logger) Fatal(ctx context.Context, msg string, fields map[string]any) {
	l.Log(ctx, LevelFatal, msg, fields, true)
}

// Noop returns a Logger that discards everything, for tests and callers
// that don't care to wire one up.
func Noop() *Logger {
	l := New("text", LevelFatal+1, LevelFatal+1)
	l.errSink = func(error) {}
	return l
}
