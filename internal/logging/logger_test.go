package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	logger, err := initTo(&buf, "mibwalk", "warn", "json")
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	log.Warn().Str("target", "10.0.0.1").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mibwalk", entry["app"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "10.0.0.1", entry["target"])
}

func TestInitConsole(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	_, err := initTo(&buf, "mibwalk", "", "console")
	require.NoError(t, err)

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestInitAutoPicksJSONOffTerminal(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	_, err := initTo(&buf, "mibwalk", "info", "auto")
	require.NoError(t, err)

	log.Info().Msg("piped")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "piped", entry["message"])
}

func TestInitRejectsBadInput(t *testing.T) {
	_, err := initTo(&bytes.Buffer{}, "mibwalk", "loud", "json")
	require.Error(t, err)

	_, err = initTo(&bytes.Buffer{}, "mibwalk", "info", "xml")
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}
