package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("local", ""))
	assert.Equal(t, slog.LevelInfo, parseLevel("prod", ""))
	assert.Equal(t, slog.LevelWarn, parseLevel("local", "WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("prod", "error"))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "prod", "info", "journal")

	l.Debug("hidden")
	l.Info("page served", "endpoint", "feed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "page served", line["message"])
	assert.Equal(t, "feed", line["endpoint"])
	assert.Equal(t, "journal", line["service"])
}
