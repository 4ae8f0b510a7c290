// Package logging provides leveled, colored log output on standard error.
//
// Standard output is reserved for command results (Base64 images and JSON),
// so every log line goes to stderr.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// LevelTrace is more verbose than slog.LevelDebug.
const LevelTrace = slog.Level(-8)

var (
	mu    sync.Mutex
	level = new(slog.LevelVar)

	traceColor = color.New(color.FgHiBlack).SprintFunc()
	debugColor = color.New(color.FgCyan).SprintFunc()
	infoColor  = color.New(color.FgGreen).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

func init() {
	level.Set(slog.LevelWarn)
	slog.SetDefault(slog.New(NewColorTextHandler(os.Stderr, level)))
}

// ColorTextHandler writes "LEVEL message key=value ..." lines.
type ColorTextHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
}

// NewColorTextHandler creates a handler writing records at or above lvl to w.
func NewColorTextHandler(w io.Writer, lvl slog.Leveler) *ColorTextHandler {
	return &ColorTextHandler{mu: &sync.Mutex{}, w: w, level: lvl}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ColorTextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle formats and writes one record.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(levelText(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler that appends attrs to every record.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is a no-op; groups are flattened.
func (h *ColorTextHandler) WithGroup(string) slog.Handler {
	return h
}

func levelText(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return traceColor("TRACE")
	case l < slog.LevelInfo:
		return debugColor("DEBUG")
	case l < slog.LevelWarn:
		return infoColor("INFO")
	case l < slog.LevelError:
		return warnColor("WARN")
	default:
		return errorColor("ERROR")
	}
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, " %s=%v", a.Key, a.Value.Resolve())
}

// ParseLevel maps "trace", "debug", "info", "warn" and "error" to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Init sets the global level from its name and directs output to w.
// Colors are disabled when w is not a terminal.
func Init(levelName string, w io.Writer) error {
	l, err := ParseLevel(levelName)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	level.Set(l)
	if f, ok := w.(*os.File); !ok || f != os.Stderr {
		color.NoColor = true
	}
	slog.SetDefault(slog.New(NewColorTextHandler(w, level)))
	return nil
}

// Trace logs at trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}
