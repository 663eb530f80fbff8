package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: FormatJSON, Output: &buf, Fields: map[string]string{"app": "retailpos"}})

	logger.Debug().Msg("hidden")
	logger.Info().Str("bill_number", "INV-1").Msg("checkout committed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "checkout committed", entry["message"])
	assert.Equal(t, "INV-1", entry["bill_number"])
	assert.Equal(t, "retailpos", entry["app"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "console", Output: &buf})

	logger.Info().Msg("quiet")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("printer offline")
	assert.Contains(t, buf.String(), "printer offline")
}
