package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 1_000_000, cfg.NumPoints)
	assert.Equal(t, []string{"shapefile", "geoparquet"}, cfg.Formats)
	assert.Equal(t, []string{"frame", "duckdb"}, cfg.Engines)
	assert.True(t, cfg.CrossCheck)
	assert.Equal(t, orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}, cfg.Bound())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geobench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /tmp/bench
num_points: 5000
seed: 42
region:
  min_x: 0
  min_y: 0
  max_x: 5
  max_y: 5
engines: [frame, sqlite]
duckdb:
  install_extensions: false
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/bench", cfg.DataDir)
	assert.Equal(t, "points", cfg.BaseName, "unset keys keep defaults")
	assert.Equal(t, 5000, cfg.NumPoints)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, Region{MaxX: 5, MaxY: 5}, cfg.Region)
	assert.Equal(t, []string{"frame", "sqlite"}, cfg.Engines)
	assert.False(t, cfg.DuckDB.InstallExtensions)
	assert.Equal(t, []string{"spatial"}, cfg.DuckDB.Extensions)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultPathsAbsent(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_DefaultPathPresent(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geobench.yaml"), []byte("num_points: 10\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.NumPoints)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_points: [\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dir", func(c *Config) { c.DataDir = "" }},
		{"empty base", func(c *Config) { c.BaseName = "" }},
		{"zero points", func(c *Config) { c.NumPoints = 0 }},
		{"negative points", func(c *Config) { c.NumPoints = -5 }},
		{"inverted region", func(c *Config) { c.Region.MinX = 20 }},
		{"no formats", func(c *Config) { c.Formats = nil }},
		{"no engines", func(c *Config) { c.Engines = []string{} }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
