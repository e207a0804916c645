package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelcomp/compose"
)

func TestLoadRuntime_Defaults(t *testing.T) {
	cfg, err := LoadRuntime(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 50052, cfg.GRPC.Port)
	assert.Equal(t, 1, cfg.Compose.Jobs)
	assert.Equal(t, 0.3, cfg.Compose.SparseThreshold)
	assert.Zero(t, cfg.Metrics.Port)
}

func TestLoadRuntime_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yml")
	require.NoError(t, os.WriteFile(path, []byte(`schema_version: v1
log: { level: debug, json: true }
metrics: { port: 9100 }
compose: { jobs: 4, sparse_threshold: 0 }
`), 0o644))
	t.Setenv("PANELCOMP__METRICS__PORT", "9200")
	t.Setenv("PANELCOMP__GRPC__PORT", "6000")

	cfg, err := LoadRuntime(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 9200, cfg.Metrics.Port)
	assert.Equal(t, 6000, cfg.GRPC.Port)
	assert.Equal(t, 4, cfg.Compose.Jobs)
	assert.Equal(t, 0.0, cfg.Compose.SparseThreshold)
}

func TestLoadRuntime_RejectsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yml")
	require.NoError(t, os.WriteFile(path, []byte("schema_version: v2\n"), 0o644))
	_, err := LoadRuntime(path)
	require.Error(t, err)
}

func TestLoadRuntime_RejectsThresholdOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yml")
	require.NoError(t, os.WriteFile(path, []byte("compose: { sparse_threshold: 1.5 }\n"), 0o644))
	_, err := LoadRuntime(path)
	require.ErrorIs(t, err, compose.ErrInvalidThreshold)

	t.Setenv("PANELCOMP__COMPOSE__SPARSE_THRESHOLD", "-0.1")
	_, err = LoadRuntime("")
	require.ErrorIs(t, err, compose.ErrInvalidThreshold)
}
