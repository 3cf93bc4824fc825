package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Info("Segmenter", "search completed", map[string]interface{}{
		"workers": 4,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Segmenter", entry["component"])
	assert.Equal(t, "search completed", entry["message"])
	assert.EqualValues(t, 4, entry["workers"])
}

func TestZerologAdapterError(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("PipelineCoordinator", errors.New("boom"), nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestZerologAdapterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Segmenter", "hidden", nil)
	log.Info("Segmenter", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warning("Segmenter", "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestNopDiscards(t *testing.T) {
	var l Logger = Nop{}
	l.Info("x", "y", nil)
	l.Error("x", errors.New("y"), nil)
	l.Warning("x", "y", nil)
	l.Debug("x", "y", nil)
}
