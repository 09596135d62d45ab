package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultWriter(t *testing.T) {
	cfg := Config{
		Level:  slog.LevelInfo,
		Format: "json",
	}

	logger := New(cfg)
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	}

	logger := New(cfg)
	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantFormat  string
	}{
		{
			name:        "production uses json",
			environment: "production",
			wantFormat:  "json",
		},
		{
			name:        "development uses pretty",
			environment: "development",
			wantFormat:  "pretty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := Config{
				Level:       slog.LevelInfo,
				Environment: tt.environment,
				Writer:      &buf,
			}

			logger := New(cfg)
			logger.Info("test")

			output := buf.String()
			if tt.wantFormat == "json" {
				assert.Contains(t, output, `"msg":"test"`)
			} else {
				// Pretty format should contain ANSI codes.
				assert.Contains(t, output, "test")
				assert.True(t, len(output) > len("test\n"))
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	level := slog.LevelWarn
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: level})

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Output(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  slog.LevelDebug,
		Format: "pretty",
		Writer: &buf,
	}

	logger := New(cfg)
	logger.Info("card bound", "card", "C1", "games", 3)

	output := buf.String()
	require.True(t, strings.HasSuffix(output, "\n"))
	assert.Contains(t, output, "INF")
	assert.Contains(t, output, "card bound")
	assert.Contains(t, output, "card=C1")
	assert.Contains(t, output, "games=3")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  slog.LevelDebug,
		Format: "pretty",
		Writer: &buf,
	}

	logger := New(cfg)
	tickLogger := logger.With("tick_id", "abc")
	tickLogger.Info("reconciled")

	assert.Contains(t, buf.String(), "tick_id=abc")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	}

	logger := New(cfg)
	logger.WithError(errors.New("boom")).Error("scan failed")

	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), "scan failed")
}
