package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "assetflow.db", cfg.Database.DSN)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
database:
  type: postgres
  dsn: "host=db user=assetflow dbname=assetflow"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "host=db user=assetflow dbname=assetflow", cfg.Database.DSN)
	// Unset keys keep their defaults.
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [:::"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
