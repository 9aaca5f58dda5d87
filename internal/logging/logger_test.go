package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Str("line", "EV:ENTRY").Msg("serial line received")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"line":"EV:ENTRY"`)
	assert.Contains(t, out, `"message":"serial line received"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("hidden")
	Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}
