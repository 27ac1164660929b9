package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud", Format: JSONFormat})
	assert.Error(t, err)

	l, err := New(Config{Level: "INFO", Format: ConsoleFormat})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestJSONFieldsAndNames(t *testing.T) {
	var buf bytes.Buffer
	l := newWithSink(Config{Format: JSONFormat}, zapcore.DebugLevel, zapcore.AddSync(&buf))

	l.Named("engine").WithFields("save", "s1").Info("level up", "level", 3, "error", errors.New("boom"), "dangling")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "level up", line["msg"])
	assert.Equal(t, "engine", line["logger"])
	assert.Equal(t, "s1", line["save"])
	assert.Equal(t, float64(3), line["level"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "dangling", line["extra"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := newWithSink(Config{Format: JSONFormat}, zapcore.WarnLevel, zapcore.AddSync(&buf))
	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Info("x", "k", 1)
	assert.Equal(t, l, l.Named("n").WithFields("a", 1))
	assert.NoError(t, l.Sync())
}
