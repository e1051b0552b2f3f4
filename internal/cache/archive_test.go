package cache

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "core", "git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "core", "git", "IDENT"), []byte("core/git/2.44.0\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.hart"), []byte("artifact"), 0600))
	require.NoError(t, os.Symlink("core/git", filepath.Join(src, "latest")))

	var buf bytes.Buffer
	require.NoError(t, packDir(src, &buf))

	dst := t.TempDir()
	require.NoError(t, unpackDir(&buf, dst))

	data, err := os.ReadFile(filepath.Join(dst, "core", "git", "IDENT"))
	require.NoError(t, err)
	require.Equal(t, "core/git/2.44.0\n", string(data))

	info, err := os.Stat(filepath.Join(dst, "top.hart"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	link, err := os.Readlink(filepath.Join(dst, "latest"))
	require.NoError(t, err)
	require.Equal(t, "core/git", link)
}

func TestUnpackRejectsTraversal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "../evil",
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     4,
	}))
	_, err := tw.Write([]byte("oops"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	dst := t.TempDir()
	err = unpackDir(&buf, dst)
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes target directory")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dst), "evil"))
	require.True(t, os.IsNotExist(statErr))
}

func TestUnpackRejectsSymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()

	// A symlink entry pointing outside the target, then a file entry that
	// resolves through it. Lexically both names are local to the target.
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "exit",
		Typeflag: tar.TypeSymlink,
		Linkname: outside,
		Mode:     0755,
	}))
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "exit/pwn",
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     4,
	}))
	_, err := tw.Write([]byte("oops"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	dst := t.TempDir()
	require.Error(t, unpackDir(&buf, dst))

	_, statErr := os.Stat(filepath.Join(outside, "pwn"))
	require.True(t, os.IsNotExist(statErr), "file was written outside the target directory")
}

func TestUnpackEmptyArchive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	require.NoError(t, unpackDir(&buf, t.TempDir()))
}
