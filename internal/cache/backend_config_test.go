package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBackendConfig(t *testing.T) {
	t.Run("reads the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.yml")
		require.NoError(t, os.WriteFile(path, []byte(`
endpoint: cache.internal:9000
bucket: ci-cache
access_key: runner
secret_key: hunter2
use_ssl: false
`), 0600))

		cfg, err := LoadBackendConfig(path)
		require.NoError(t, err)
		require.Equal(t, "cache.internal:9000", cfg.Endpoint)
		require.Equal(t, "ci-cache", cfg.Bucket)
		require.Equal(t, "runner", cfg.AccessKey)
		require.False(t, cfg.UseSSL)
	})

	t.Run("a missing file is fine", func(t *testing.T) {
		cfg, err := LoadBackendConfig(filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err)
		require.Equal(t, "", cfg.Endpoint)
		require.True(t, cfg.UseSSL)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.yml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint: from-file:9000\nbucket: file-bucket\n"), 0600))

		t.Setenv("BIOMECI_CACHE_ENDPOINT", "from-env:9000")
		t.Setenv("BIOMECI_CACHE_USE_SSL", "false")

		cfg, err := LoadBackendConfig(path)
		require.NoError(t, err)
		require.Equal(t, "from-env:9000", cfg.Endpoint)
		require.Equal(t, "file-bucket", cfg.Bucket)
		require.False(t, cfg.UseSSL)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.yml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint: [broken"), 0600))

		_, err := LoadBackendConfig(path)
		require.Error(t, err)
	})
}

func TestBackendConfigValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, (&BackendConfig{}).Validate())
	require.Error(t, (&BackendConfig{Endpoint: "e"}).Validate())
	require.NoError(t, (&BackendConfig{Endpoint: "e", Bucket: "b"}).Validate())
}
