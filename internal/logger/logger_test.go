package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billcalc.log")

	closer, err := Setup(LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log := WithComponent("payments")
	log.Debug().Str("payment", "P-1").Msg("allocated")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "payments", line["component"])
	assert.Equal(t, "P-1", line["payment"])
	assert.Equal(t, "allocated", line["message"])
	assert.Equal(t, "debug", line["level"])
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "stderr", cfg.Output)

	closer, err := Setup(cfg)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
