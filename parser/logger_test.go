package parser

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopLogger(t *testing.T) {
	l := NopLogger{}
	l.Debug("test message", "key", "value")
	l.Info("test message", "key", "value")
	l.Warn("test message", "key", "value")
	l.Error("test message", "key", "value")

	_, ok := l.With("key", "value").(NopLogger)
	assert.True(t, ok, "With should return NopLogger")
}

func TestSlogAdapter(t *testing.T) {
	t.Run("nil uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		require.NotNil(t, adapter.logger)
	})

	t.Run("writes structured attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logger := NewSlogAdapter(slog.New(handler)).With("file", "openapi.yaml")

		logger.Debug("relocated definition", "bucket", "schemas")
		logger.Warn("remote reference left in place")

		out := buf.String()
		assert.Contains(t, out, "relocated definition")
		assert.Contains(t, out, "bucket=schemas")
		assert.Contains(t, out, "file=openapi.yaml")
		assert.Contains(t, out, "level=WARN")
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})
		logger := NewSlogAdapter(slog.New(handler))

		logger.Info("hidden")
		logger.Error("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestLoggerOrNop(t *testing.T) {
	_, ok := LoggerOrNop(nil).(NopLogger)
	assert.True(t, ok)

	adapter := NewSlogAdapter(nil)
	assert.Same(t, adapter, LoggerOrNop(adapter))
}
