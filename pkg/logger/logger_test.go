package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithFormat("debug", "json", &buf)

	log.Info("plan resolved", "user_id", "u-1", "plan", "pro")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "plan resolved", entry["message"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Equal(t, "pro", entry["plan"])
}

func TestAppLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithFormat("info", "json", &buf)

	log.Error("count failed", errors.New("timeout"), "table", "saved_ideas")

	assert.Contains(t, buf.String(), `"error":"timeout"`)
	assert.Contains(t, buf.String(), `"table":"saved_ideas"`)
}

func TestAppLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithFormat("warn", "json", &buf)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown", "odd")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestParseLogLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLogLevel("info"), parseLogLevel("verbose"))
	assert.Equal(t, parseLogLevel("warn"), parseLogLevel("WARNING"))
}
