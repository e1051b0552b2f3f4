package ci

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInput(t *testing.T) {
	t.Run("maps dashes to underscores and uppercases", func(t *testing.T) {
		t.Setenv("INPUT_CACHE_KEY", "some-key")
		require.Equal(t, "some-key", GetInput("cache-key"))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Setenv("INPUT_DEPS", "  core/git \n")
		require.Equal(t, "core/git", GetInput("deps"))
	})

	t.Run("missing input is empty", func(t *testing.T) {
		require.Equal(t, "", GetInput("no-such-input"))
	})
}

func TestExportVariable(t *testing.T) {
	t.Run("sets the process environment", func(t *testing.T) {
		t.Setenv("GITHUB_ENV", "")
		t.Setenv("BIOMECI_TEST_VAR", "")

		require.NoError(t, ExportVariable("BIOMECI_TEST_VAR", "value"))
		require.Equal(t, "value", os.Getenv("BIOMECI_TEST_VAR"))
	})

	t.Run("appends to the job environment file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "github_env")
		t.Setenv("GITHUB_ENV", envFile)

		require.NoError(t, ExportVariable("HAB_NONINTERACTIVE", "true"))
		require.NoError(t, ExportVariable("HAB_BLDR_URL", "https://bldr.biome.sh"))

		data, err := os.ReadFile(envFile)
		require.NoError(t, err)
		require.Equal(t, "HAB_NONINTERACTIVE=true\nHAB_BLDR_URL=https://bldr.biome.sh\n", string(data))
	})

	t.Run("multiline values use the delimiter syntax", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "github_env")
		t.Setenv("GITHUB_ENV", envFile)

		require.NoError(t, ExportVariable("MULTI", "a\nb"))

		data, err := os.ReadFile(envFile)
		require.NoError(t, err)
		require.Equal(t, "MULTI<<__BIOMECI_EOF__\na\nb\n__BIOMECI_EOF__\n", string(data))
	})
}
