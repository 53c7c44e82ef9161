package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug").With(String("strategy", "6"))
	l.Debug("stage done",
		Int("rows", 3),
		Duration("took", 1500*time.Millisecond),
		Strings("instruments", []string{"MXUS", "USGG10YR"}),
		Error(errors.New("boom")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stage done", entry["message"])
	assert.Equal(t, "6", entry["strategy"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Equal(t, float64(1500), entry["took"])
	assert.Equal(t, []any{"MXUS", "USGG10YR"}, entry["instruments"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNewWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New(&Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(&Config{Output: path})
	require.NoError(t, err)
	l.Info("pipeline done", Bool("ok", true), Float64("score", 0.25))
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, true, entry["ok"])
	assert.Equal(t, 0.25, entry["score"])
}

func TestWith_ChildCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "").With(String("component", "yahoo"), Error(nil))
	l.Info("request ok")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "yahoo", entry["component"])
	assert.Nil(t, entry["error"])
}
