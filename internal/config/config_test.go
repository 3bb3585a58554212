package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.SourceDir)
	assert.Equal(t, "dist", cfg.OutDir)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte(`{"title":"my app","out_dir":"public"}`), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "my app", cfg.Title)
	assert.Equal(t, "public", cfg.OutDir)
	// Unset fields keep their defaults.
	assert.Equal(t, "src", cfg.SourceDir)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte(`{"out_dir":"public"}`), 0644))
	t.Setenv("WB_OUT_DIR", "build")
	t.Setenv("WB_METRICS_PORT", "9100")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, 9100, cfg.MetricsPort)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Title = "saved"
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Title)
}
