package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkers(t *testing.T) {
	t.Parallel()

	t.Run("missing marker does not exist", func(t *testing.T) {
		t.Parallel()
		marker := filepath.Join(t.TempDir(), ".cache-restored")
		require.False(t, MarkerExists(marker))
	})

	t.Run("write then check", func(t *testing.T) {
		t.Parallel()
		marker := filepath.Join(t.TempDir(), "artifacts", ".cache-restored")

		require.NoError(t, WriteMarker(marker))
		require.True(t, MarkerExists(marker))
	})

	t.Run("write is idempotent", func(t *testing.T) {
		t.Parallel()
		marker := filepath.Join(t.TempDir(), ".cache-saved")

		require.NoError(t, WriteMarker(marker))
		require.NoError(t, WriteMarker(marker))
		require.True(t, MarkerExists(marker))
	})

	t.Run("remove ignores absence", func(t *testing.T) {
		t.Parallel()
		marker := filepath.Join(t.TempDir(), ".cache-saved")

		require.NoError(t, RemoveMarker(marker))
		require.NoError(t, WriteMarker(marker))
		require.NoError(t, RemoveMarker(marker))
		require.False(t, MarkerExists(marker))
	})
}

func TestSanitizeKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "biome-cache-Nightly-Build", sanitizeKey("biome-cache-Nightly Build"))
	require.Equal(t, "a-b_c.d-1", sanitizeKey("a/b_c.d:1"))
}
