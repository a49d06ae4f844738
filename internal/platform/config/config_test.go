package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9090"
database:
  url: postgres://localhost/dispatch
log:
  level: debug
`), 0o600))

	t.Setenv("DISPATCH_HTTP__PORT", "7070")
	t.Setenv("DISPATCH_REDIS__ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.HTTP.Port, "env wins over file")
	assert.Equal(t, "postgres://localhost/dispatch", cfg.Database.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE__URL", "postgres://localhost/dispatch")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE__URL", "postgres://localhost/dispatch")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
