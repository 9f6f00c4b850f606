package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(false, &buf)

	Log.Info().Str("hub", "HB_NORTH").Msg("collected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "HB_NORTH", entry["hub"])
	assert.Equal(t, "ercot-rts", entry["service"])
	assert.Equal(t, "collected", entry["message"])
}

func TestIsDev(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"", true},
		{"dev", true},
		{"development", true},
		{"production", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			assert.Equal(t, tt.want, IsDev())
		})
	}
}
