// Package logger writes one JSON object per line with a fixed set of keys
// (timestamp, level, service, action, message, hostname) plus free-form fields.
package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Logger struct {
	service string
	sl      *slog.Logger
}

var hostname = func() string { h, _ := os.Hostname(); return h }()

// New logs to stdout at the given level ("debug", "info", "warn", "error").
func New(service, level string) *Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service, level string) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("timestamp", a.Value.Time().UTC().Format(time.RFC3339Nano))
			case slog.LevelKey:
				return slog.String("level", a.Value.String())
			case slog.MessageKey:
				return slog.String("message", a.Value.String())
			}
			return a
		},
	})
	return &Logger{
		service: service,
		sl:      slog.New(h).With("service", service, "hostname", hostname),
	}
}

// Discard drops everything. Used by tests and by commands that print their own output.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "discard", "error")
}

// With returns a logger for a sub-component that keeps the same sink.
func (l *Logger) With(service string) *Logger {
	return &Logger{service: service, sl: l.sl.With("component", service)}
}

func (l *Logger) log(level slog.Level, action string, fields map[string]any, err error) {
	if !l.sl.Enabled(context.Background(), level) {
		return
	}
	attrs := make([]any, 0, 2+len(fields)*2)
	attrs = append(attrs, "action", action)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	if err != nil {
		attrs = append(attrs, slog.Group("error", "msg", err.Error()))
	}
	l.sl.Log(context.Background(), level, action, attrs...)
}

func (l *Logger) Debug(action string, fields map[string]any) { l.log(slog.LevelDebug, action, fields, nil) }
func (l *Logger) Info(action string, fields map[string]any)  { l.log(slog.LevelInfo, action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any)  { l.log(slog.LevelWarn, action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(slog.LevelError, action, fields, err)
}

// StdLog adapts the logger for APIs that take a *log.Logger, such as
// http.Server.ErrorLog. Each line is logged at warn level under action.
func (l *Logger) StdLog(action string) *log.Logger {
	return slog.NewLogLogger(l.sl.With("action", action).Handler(), slog.LevelWarn)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
