// Package biome drives the bio binary and the fixed filesystem layout the
// Biome runtime uses on a runner.
package biome

import "path/filepath"

// Paths is the filesystem contract between biomeci and the Biome runtime.
// Production code uses DefaultPaths; tests point Root somewhere disposable.
type Paths struct {
	// Root is the Biome state root, /hab in production.
	Root string

	// BinDir is the system-wide executable directory bio is installed into.
	BinDir string

	// Home is the invoking user's home directory.
	Home string
}

// DefaultPaths returns the production layout.
func DefaultPaths(home string) Paths {
	return Paths{
		Root:   "/hab",
		BinDir: "/usr/local/bin",
		Home:   home,
	}
}

// CacheDir is the shared artifact cache root.
func (p Paths) CacheDir() string { return filepath.Join(p.Root, "cache") }

// ArtifactDir is the downloaded-artifact subdirectory restored from and
// accumulated into across job runs.
func (p Paths) ArtifactDir() string { return filepath.Join(p.CacheDir(), "artifacts") }

// PkgDir is the installed-packages directory.
func (p Paths) PkgDir() string { return filepath.Join(p.Root, "pkgs") }

// SupDir is the default supervisor runtime directory.
func (p Paths) SupDir() string { return filepath.Join(p.Root, "sup", "default") }

// SupLogFile is where detached supervisor output lands.
func (p Paths) SupLogFile() string { return filepath.Join(p.SupDir(), "sup.log") }

// CtlSecretFile appears once the supervisor has initialized its control gateway.
func (p Paths) CtlSecretFile() string { return filepath.Join(p.SupDir(), "CTL_SECRET") }

// RestoreMarker guards the cache restore: at most one per job.
func (p Paths) RestoreMarker() string { return filepath.Join(p.ArtifactDir(), ".cache-restored") }

// SaveMarker guards the cache save: at most one per job.
func (p Paths) SaveMarker() string { return filepath.Join(p.PkgDir(), ".cache-saved") }

// BioBinary is the installed bio executable.
func (p Paths) BioBinary() string { return filepath.Join(p.BinDir, "bio") }

// UserHabDir is the invoking user's Biome configuration directory.
func (p Paths) UserHabDir() string { return filepath.Join(p.Home, ".hab") }

// UserCacheLink is the user-scoped cache symlink pointing at CacheDir, so
// user-scoped and system-scoped caches coincide.
func (p Paths) UserCacheLink() string { return filepath.Join(p.UserHabDir(), "cache") }
