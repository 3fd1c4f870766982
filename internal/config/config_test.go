package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cc99.yaml")
	require.NoError(t, os.WriteFile(p, []byte("node_buffer_capacity: 4\nmax_steps: 10\n"), 0o644))

	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NodeBufferCapacity)
	assert.Equal(t, uint64(10), cfg.MaxSteps)
	assert.Equal(t, config.Default().MaxErrors, cfg.MaxErrors)
}
