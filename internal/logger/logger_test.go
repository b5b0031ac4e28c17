package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	traceID := func(context.Context) string { return "abc123" }
	log := New(&buf, LevelInfo, "enigma", traceID).With("component", "test")

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "converted", "chars", 5)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "converted", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "enigma", rec["service"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, "abc123", rec["trace_id"])
	assert.EqualValues(t, 5, rec["chars"])
	assert.Contains(t, rec["file"], "logger_test.go")
}

func TestLoggerEvents(t *testing.T) {
	t.Parallel()

	var got []Record
	events := Events{
		Error: func(_ context.Context, r Record) { got = append(got, r) },
	}
	log := NewWithMetadata(&bytes.Buffer{}, LevelDebug, "enigma", nil, events, map[string]string{"app": "cli"})

	log.Info(context.Background(), "ignored by hook")
	log.Error(context.Background(), "bad rotor", "rotor", "IX")

	require.Len(t, got, 1)
	assert.Equal(t, "bad rotor", got[0].Message)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, "IX", got[0].Attributes["rotor"])
}

func TestNoop(t *testing.T) {
	t.Parallel()

	log := Noop()
	assert.False(t, log.Enabled(context.Background(), LevelError))
	log.Error(context.Background(), "dropped")
}
