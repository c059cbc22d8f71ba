package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "telemetry.kpm.indication.>", cfg.NATS.Subject)
	assert.Equal(t, "detector-workers", cfg.NATS.Queue)
	assert.Equal(t, "detector.verdicts.created", cfg.NATS.VerdictSubject)

	assert.Equal(t, 30, cfg.Pipeline.BatchSize)
	assert.Equal(t, 1440, cfg.Pipeline.HardCap)
	assert.Equal(t, 5, cfg.Pipeline.Window)

	assert.Equal(t, "models/stage1.json", cfg.Models.Stage1Path)
	assert.False(t, cfg.Recorder.Enabled)
	assert.False(t, cfg.SDL.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
pipeline:
  batch_size: 10
  hard_cap: 200
sdl:
  enabled: true
  url: redis://redis:6379/1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Pipeline.BatchSize)
	assert.Equal(t, 200, cfg.Pipeline.HardCap)
	assert.True(t, cfg.SDL.Enabled)
	assert.Equal(t, "redis://redis:6379/1", cfg.SDL.URL)

	// Untouched keys keep defaults.
	assert.Equal(t, 5, cfg.Pipeline.Window)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("RANWATCH_PIPELINE_BATCH_SIZE", "7")
	t.Setenv("RANWATCH_NATS_URL", "nats://bus:4222")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.BatchSize)
	assert.Equal(t, "nats://bus:4222", cfg.NATS.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
