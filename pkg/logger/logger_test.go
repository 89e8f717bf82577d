package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("saving nodes", "count", 42)

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "saving nodes")
	assert.Contains(t, out, "count=42")
}

func TestColorHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))

	log := slog.New(h)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestColorHandlerGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorHandler(&buf, nil)
	log := slog.New(h.WithGroup("db").WithAttrs([]slog.Attr{slog.String("driver", "sqlite")}))

	log.Info("connected")
	assert.Contains(t, buf.String(), "db.driver=sqlite")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}
