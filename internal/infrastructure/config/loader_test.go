package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/voicectl/internal/domain"
)

func newTestLoader(path string, env map[string]string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: func(k string) string { return env[k] }}
}

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicectl", "config.yaml")

	cfg, err := newTestLoader(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.SecureFilePermissions), info.Mode().Perm())
}

func TestWrittenDefaultReloadsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := newTestLoader(path, nil)
	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	reloaded, err := loader.LoadFile()
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), reloaded); diff != "" {
		t.Fatalf("reloaded default config differs (-want +got):\n%s", diff)
	}
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  port: 8080
storage:
  driver: sqlite
  sqlite_path: /tmp/voicectl-test.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newTestLoader(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, domain.StorageDriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/voicectl-test.db", cfg.Storage.SQLitePath)
	assert.Equal(t, domain.DefaultMongoURI, cfg.Storage.URI)
	assert.Equal(t, domain.FallbackBufferCapacity, cfg.Storage.BufferCapacity)
	assert.Equal(t, 30, cfg.Storage.ProbeIntervalSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	env := map[string]string{
		EnvPort:          "4000",
		EnvMongoURI:      "mongodb://db.internal:27017",
		EnvStorageDriver: "Memory",
		EnvLogLevel:      "DEBUG",
	}

	cfg, err := newTestLoader(path, env).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Storage.URI)
	assert.Equal(t, domain.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Logging.Level)

	onDisk, err := newTestLoader(path, nil).LoadFile()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPort, onDisk.Server.Port, "overrides are not written back")
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := newTestLoader(path, map[string]string{EnvPort: "http"}).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o600))

	_, err := newTestLoader(path, nil).Load(context.Background())
	assert.Error(t, err)
}

func TestPathHonorsEnvironment(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.yaml")
	l := newTestLoader("", map[string]string{EnvConfigPath: custom})
	assert.Equal(t, custom, l.Path())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("VOICECTL_DOTENV_TEST=from-file\nPORT_DOTENV_TEST=5000\n"), 0o600))
	t.Setenv("VOICECTL_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("VOICECTL_DOTENV_TEST"))
	t.Setenv("PORT_DOTENV_TEST", "already-set")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("VOICECTL_DOTENV_TEST"))
	assert.Equal(t, "already-set", os.Getenv("PORT_DOTENV_TEST"))
}
