package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o660))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server_url: http://localhost:9999
username: alice
salt: 0123456789abcdef
download_dir: /tmp/files
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ServerURL)
	require.Equal(t, "alice", cfg.Username)
	require.Equal(t, "0123456789abcdef", cfg.Salt)
	require.Equal(t, "/tmp/files", cfg.DownloadDir)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
username: alice
salt: 0123456789abcdef
`)

	t.Setenv("FILES_USERNAME", "bob")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "bob", cfg.Username)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("FILES_USERNAME", "alice")
	t.Setenv("FILES_SALT", "0123456789abcdef")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	require.Equal(t, "downloads", cfg.DownloadDir)
}

func TestLoadConfig_MissingUsername(t *testing.T) {
	path := writeConfigFile(t, `
salt: 0123456789abcdef
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Username")
}

func TestLoadConfig_ShortSalt(t *testing.T) {
	path := writeConfigFile(t, `
username: alice
salt: abc
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Salt")
}

func TestLoadConfig_BadServerURL(t *testing.T) {
	path := writeConfigFile(t, `
server_url: not-a-url
username: alice
salt: 0123456789abcdef
`)

	_, err := loadConfig(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ServerURL")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
