package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "BACKUP_BUCKET", "BACKUP_PREFIX"} {
		t.Setenv(env, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, []string{"Emergency", "Cyclone", "HOD", "Manager"}, cfg.DefaultCategories)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contactbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":9000"
storage:
  db_path: /var/lib/contactbook/contacts.db
logging:
  level: debug
backup:
  bucket: from-file
default_categories: [Family]
`), 0644))

	clearEnv(t)
	t.Setenv("BACKUP_BUCKET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, "/var/lib/contactbook/contacts.db", cfg.Storage.DBPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "from-env", cfg.Backup.Bucket)
	assert.Equal(t, "contactbook/", cfg.Backup.Prefix, "unset keys keep defaults")
	assert.Equal(t, []string{"Family"}, cfg.DefaultCategories)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [\n"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	level := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(level, []byte("logging:\n  level: loud\n"), 0644))
	_, err = Load(level)
	assert.ErrorContains(t, err, "logging.level")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "contactbook.yaml")
	cfg := DefaultConfig()
	cfg.Backup.Bucket = "b"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPath(t *testing.T) {
	t.Setenv("CONTACTBOOK_CONFIG", "/etc/contactbook.yaml")
	assert.Equal(t, "flag.yaml", Path("flag.yaml"))
	assert.Equal(t, "/etc/contactbook.yaml", Path(""))

	t.Setenv("CONTACTBOOK_CONFIG", "")
	assert.Equal(t, DefaultPath, Path(""))
}
