package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSON(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		InitDefault()
	})
	viper.Set(LevelKey, "warn")
	viper.Set(FormatKey, "json")

	var buf bytes.Buffer
	Init(&buf)

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("dropped")
	log.Ctx(context.Background()).Warn().Str("k", "v").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "v", line["k"])
}

func TestInit_UnknownLevel(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		InitDefault()
	})
	viper.Set(LevelKey, "chatty")

	Init(&bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
