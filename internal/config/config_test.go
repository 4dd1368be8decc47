package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(New("", ""))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "tirelog.db", cfg.Database.Path)
	assert.Equal(t, "merge", cfg.Import.Mode)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tirelog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database:
  path: /data/garage.db
import:
  mode: replace
log:
  level: debug
server:
  allowed_origins: [https://a.example, https://b.example]
  shutdown_timeout: 3s
`), 0o644))
	t.Setenv("TIRELOG_LOG_LEVEL", "warn")
	t.Setenv("TIRELOG_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := Load(New(file, ""))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/data/garage.db", cfg.Database.Path)
	assert.Equal(t, "replace", cfg.Import.Mode)
	assert.Equal(t, "warn", cfg.Log.Level, "env wins over file")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_SearchesHome(t *testing.T) {
	chdir(t, t.TempDir())
	home := t.TempDir()
	dir := filepath.Join(home, ".config", "tirelog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tirelog.yaml"), []byte("export:\n  version: 9.9.9\n"), 0o644))

	cfg, err := Load(New("", home))
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", cfg.Export.Version)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(filepath.Join(t.TempDir(), "nope.yaml"), ""))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(New("", ""))
	require.NoError(t, err)

	cfg.Database.Driver = "postgres"
	cfg.Import.Mode = "upsert"
	cfg.Log.Level = "loud"
	cfg.Server.ShutdownTimeout = 0

	err = cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "database.dsn")
	assert.Contains(t, msg, "import.mode")
	assert.Contains(t, msg, "log.level")
	assert.Contains(t, msg, "server.shutdown_timeout")
}
