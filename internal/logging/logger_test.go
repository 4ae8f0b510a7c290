package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init("warn", &buf))
	t.Cleanup(func() { _ = Init("warn", &bytes.Buffer{}) })

	Debug("hidden", "k", 1)
	Warn("shown", "locator", "file:///a.png")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN shown locator=file:///a.png")
}

func TestColorTextHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)

	logger := slog.New(NewColorTextHandler(&buf, lvl)).With("step", 2)
	logger.Debug("running", "action", "contrast")

	assert.Contains(t, buf.String(), "running step=2 action=contrast")
}
