package dtsettings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserDir(t *testing.T) {
	orig := osUserHomeDir
	defer func() { osUserHomeDir = orig }()

	osUserHomeDir = func() (string, error) { return "/home/u", nil }
	dir, err := GetUserDir()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u", ".drivetug"), dir)

	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	dir, err = GetUserDir()
	assert.Error(t, err)
	assert.Equal(t, UserDir, dir)

	osUserHomeDir = func() (string, error) { return "/home/u", nil }
	p, err := DefaultConfigPath()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u", ".drivetug", "config.yaml"), p)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	t.Run("missing", func(t *testing.T) {
		cfg, err := Load(path, false)
		require.NoError(t, err)
		assert.Equal(t, Defaults(dir), cfg)
		assert.Equal(t, filepath.Join(dir, "credentials.json"), cfg.Credentials)
		assert.Equal(t, filepath.Join(dir, "accounts"), cfg.AccountsDir())
		assert.Equal(t, filepath.Join(dir, "drivetug-state.json"), cfg.StateFile())

		_, err = Load(path, true)
		assert.Error(t, err)
	})

	t.Run("overrides", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("account: me@example.com\npage_size: 0\nverbose: true\nlanguage: pt\n"), 0o600))
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, "me@example.com", cfg.Account)
		assert.Equal(t, int64(DefaultPageSize), cfg.PageSize)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "pt", cfg.Language)
		assert.Equal(t, dir, cfg.Dir)
	})

	t.Run("home_paths", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		require.NoError(t, os.WriteFile(path, []byte("credentials: ~/secrets/client.json\n"), 0o600))
		cfg, err := Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "secrets", "client.json"), cfg.Credentials)
		assert.Equal(t, filepath.Join(dir, "drivetug.log"), cfg.LogFile)
	})

	t.Run("invalid", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("page_size: [\n"), 0o600))
		_, err := Load(path, false)
		assert.Error(t, err)
	})
}
