package biome

import (
	"context"
	"fmt"
	"os/user"
	"strings"

	"github.com/biome-sh/biomeci/internal/output"
	"github.com/biome-sh/biomeci/internal/run"
)

// InstallPackages installs all listed packages in a single elevated bio
// invocation. The exported environment is forwarded explicitly because
// elevation may otherwise reset it.
func InstallPackages(ctx context.Context, r run.Runner, splog *output.Splog, env, pkgs []string) error {
	splog.Info("Installing packages: %s", strings.Join(pkgs, " "))

	args := append([]string{"bio", "pkg", "install"}, pkgs...)
	if _, err := r.Sudo(ctx, env, args...); err != nil {
		return err
	}
	return nil
}

// ProvisionCacheDir ensures the shared cache root exists, is owned by the
// runner's user and group, and keeps group ownership on files created by
// elevated processes via the group-sticky bit.
func ProvisionCacheDir(ctx context.Context, r run.Runner, paths Paths) error {
	owner, err := runnerOwner()
	if err != nil {
		return err
	}

	if _, err := r.Sudo(ctx, nil, "mkdir", "-p", paths.CacheDir()); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if _, err := r.Sudo(ctx, nil, "chown", owner, paths.CacheDir()); err != nil {
		return fmt.Errorf("own cache dir: %w", err)
	}
	if _, err := r.Sudo(ctx, nil, "chmod", "g+s", paths.CacheDir()); err != nil {
		return fmt.Errorf("set cache dir group-sticky: %w", err)
	}
	return nil
}

// pkgDirPermDepth bounds how deep group-write permissions are applied under
// the package directory: origin/name/version/release.
const pkgDirPermDepth = "4"

// EnablePkgDirForUser hands the installed-packages directory to the runner's
// user so later package installs succeed without elevation.
func EnablePkgDirForUser(ctx context.Context, r run.Runner, paths Paths) error {
	owner, err := runnerOwner()
	if err != nil {
		return err
	}

	if _, err := r.Sudo(ctx, nil, "chown", "-R", owner, paths.PkgDir()); err != nil {
		return fmt.Errorf("own package dir: %w", err)
	}
	if _, err := r.Sudo(ctx, nil, "find", paths.PkgDir(), "-maxdepth", pkgDirPermDepth,
		"-type", "d", "-exec", "chmod", "g+ws", "{}", "+"); err != nil {
		return fmt.Errorf("relax package dir permissions: %w", err)
	}
	return nil
}

// runnerOwner returns the invoking user's uid:gid pair for chown.
func runnerOwner() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve runner user: %w", err)
	}
	return u.Uid + ":" + u.Gid, nil
}
