package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("returns a non-nil logger with no options", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, New())
	})

	t.Run("default format is text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		New(WithOutput(&buf)).Info("test message", "key", "value")

		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), `msg="test message"`)
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("default level is INFO", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := New(WithOutput(&buf))

		logger.Debug("should not appear")
		assert.Empty(t, buf.String())

		logger.Info("should appear")
		assert.NotEmpty(t, buf.String())
	})
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

	logger.Debug("cache miss", "expression", "a + 1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "cache miss", entry["msg"])
	assert.Equal(t, "a + 1", entry["expression"])

	ts, ok := entry["time"].(string)
	require.True(t, ok, "time field should be a string")
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "text", want: FormatText},
		{input: " JSON ", want: FormatJSON},
		{input: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseFormat(t, got.String()))
		})
	}
}

func mustParseFormat(t *testing.T, s string) Format {
	t.Helper()
	f, err := ParseFormat(s)
	require.NoError(t, err)
	return f
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "", want: slog.LevelInfo},
		{input: "debug", want: slog.LevelDebug},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
