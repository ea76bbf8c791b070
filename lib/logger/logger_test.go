package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_LevelFiltering(t *testing.T) {
	t.Setenv("ENV", "")
	var buf bytes.Buffer
	l := NewSlog(&buf, WarnLevel)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", "keyword", "#range")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "#range", rec["keyword"])
	assert.Contains(t, rec, "ts")
}

func TestSlogLogger_WithSharesLevel(t *testing.T) {
	t.Setenv("ENV", "")
	var buf bytes.Buffer
	l := NewSlog(&buf, ErrorLevel)
	child := l.With("variant", "dual")

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, child.Level())

	child.Debug("state change")
	assert.Contains(t, buf.String(), `"variant":"dual"`)
}

func TestParseLevel(t *testing.T) {
	for _, lv := range []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel} {
		got, ok := ParseLevel(lv.String())
		assert.True(t, ok)
		assert.Equal(t, lv, got)
	}
	got, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, InfoLevel, got)
}
