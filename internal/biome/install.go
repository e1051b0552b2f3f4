package biome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/biome-sh/biomeci/internal/output"
	"github.com/biome-sh/biomeci/internal/run"
)

// releaseURL is the download location for pinned bio release archives.
const releaseURL = "https://github.com/biome-sh/biome/releases/download"

// EnsureInstalled makes sure the bio binary is available on the runner. If it
// is already on the search path the installation sub-phases are skipped
// entirely; otherwise the pinned release is downloaded and installed, the hab
// system user is created, the install is verified and the user cache is
// linked to the shared cache directory.
func EnsureInstalled(ctx context.Context, r run.Runner, splog *output.Splog, paths Paths, version string) error {
	if path, err := r.LookPath("bio"); err == nil {
		splog.Info("bio already installed at %s, skipping installation", path)
		return nil
	}

	splog.Info("Installing bio %s", version)

	if err := installRelease(ctx, r, paths, version); err != nil {
		return fmt.Errorf("install bio release: %w", err)
	}
	if err := createUser(ctx, r); err != nil {
		return fmt.Errorf("create hab user: %w", err)
	}
	if err := verify(ctx, r, splog); err != nil {
		return fmt.Errorf("verify bio install: %w", err)
	}
	if err := linkUserCache(paths); err != nil {
		return fmt.Errorf("link user cache: %w", err)
	}
	return nil
}

// installRelease downloads the release archive for the current platform,
// extracts the bio binary into the system executable directory and removes
// the archive.
func installRelease(ctx context.Context, r run.Runner, paths Paths, version string) error {
	target, err := releaseTarget()
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "biomeci-install-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	archive := filepath.Join(tmpDir, "bio.tar.gz")
	url := fmt.Sprintf("%s/v%s/bio-%s-%s.tar.gz", releaseURL, version, version, target)

	if _, err := r.Run(ctx, "curl", "-fsSL", "-o", archive, url); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if _, err := r.Run(ctx, "tar", "-xzf", archive, "-C", tmpDir); err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	if _, err := r.Sudo(ctx, nil, "mv", filepath.Join(tmpDir, "bio"), paths.BioBinary()); err != nil {
		return fmt.Errorf("install binary: %w", err)
	}
	if _, err := r.Sudo(ctx, nil, "chmod", "0755", paths.BioBinary()); err != nil {
		return fmt.Errorf("mark binary executable: %w", err)
	}
	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove archive: %w", err)
	}
	return nil
}

// createUser creates the hab system group and user. The user is added to the
// docker group so the supervisor can drive the container engine.
func createUser(ctx context.Context, r run.Runner) error {
	if _, err := r.Sudo(ctx, nil, "groupadd", "--force", "hab"); err != nil {
		return err
	}
	_, err := r.Sudo(ctx, nil, "useradd", "--system", "--no-create-home", "-g", "hab", "-G", "docker", "hab")
	return err
}

func verify(ctx context.Context, r run.Runner, splog *output.Splog) error {
	version, err := r.Output(ctx, "bio", "--version")
	if err != nil {
		return err
	}
	splog.Info("Installed %s", version)
	return nil
}

// linkUserCache symlinks the user-scoped cache at the shared system cache so
// the two coincide.
func linkUserCache(paths Paths) error {
	if err := os.MkdirAll(paths.UserHabDir(), 0755); err != nil {
		return err
	}
	if _, err := os.Lstat(paths.UserCacheLink()); err == nil {
		return nil
	}
	return os.Symlink(paths.CacheDir(), paths.UserCacheLink())
}

// releaseTarget maps the current platform onto a release archive suffix.
func releaseTarget() (string, error) {
	switch runtime.GOOS + "/" + runtime.GOARCH {
	case "linux/amd64":
		return "x86_64-linux", nil
	case "linux/arm64":
		return "aarch64-linux", nil
	case "darwin/amd64":
		return "x86_64-darwin", nil
	default:
		return "", fmt.Errorf("no bio release for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
}
