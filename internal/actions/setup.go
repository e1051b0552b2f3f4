// Package actions implements the two job entry points: setup at job start and
// cache save at job end. Each is a strictly ordered sequence of phases that
// fails fast with a phase-named error.
package actions

import (
	"context"
	"strings"

	"github.com/biome-sh/biomeci/internal/biome"
	"github.com/biome-sh/biomeci/internal/cache"
	"github.com/biome-sh/biomeci/internal/ci"
	"github.com/biome-sh/biomeci/internal/config"
	biomecierrors "github.com/biome-sh/biomeci/internal/errors"
	"github.com/biome-sh/biomeci/internal/output"
	"github.com/biome-sh/biomeci/internal/run"
)

// Options carries the collaborators of both routines. Everything is an
// explicit dependency so tests can substitute any of them.
type Options struct {
	Config     *config.Config
	Runner     run.Runner
	Store      cache.Store
	Splog      *output.Splog
	Paths      biome.Paths
	Supervisor *biome.Supervisor
}

func (o *Options) supervisor() *biome.Supervisor {
	if o.Supervisor != nil {
		return o.Supervisor
	}
	return biome.NewSupervisor(o.Runner, o.Splog, o.Paths)
}

// Setup brings the runner to a state where bio is installed, its cache is
// warm, declared dependencies are present, and the supervisor is running if
// requested. Phases run strictly in order; the first failure aborts the rest
// and is reported with the failing phase's name. System changes already
// applied are not rolled back.
func Setup(ctx context.Context, opts Options) error {
	cfg := opts.Config
	splog := opts.Splog

	if err := exportEnvironment(cfg); err != nil {
		return biomecierrors.NewPhaseError("export environment", err)
	}

	splog.Group("Install bio")
	err := biome.EnsureInstalled(ctx, opts.Runner, splog, opts.Paths, cfg.Version)
	splog.EndGroup()
	if err != nil {
		return biomecierrors.NewPhaseError("install bio", err)
	}

	if err := biome.ProvisionCacheDir(ctx, opts.Runner, opts.Paths); err != nil {
		return biomecierrors.NewPhaseError("provision cache dir", err)
	}

	splog.Group("Restore cache")
	err = restoreCache(ctx, opts)
	splog.EndGroup()
	if err != nil {
		return biomecierrors.NewPhaseError("restore cache", err)
	}

	if len(cfg.Deps) > 0 {
		splog.Group("Install dependencies")
		err = biome.InstallPackages(ctx, opts.Runner, splog, cfg.Env(), cfg.Deps)
		splog.EndGroup()
		if err != nil {
			return biomecierrors.NewPhaseError("install dependencies", err)
		}
	}

	if cfg.Supervisor.Enabled {
		sup := opts.supervisor()
		splog.Group("Start supervisor")
		if err := sup.Start(ctx, cfg.Env()); err != nil {
			splog.EndGroup()
			return biomecierrors.NewPhaseError("start supervisor", err)
		}
		if err := sup.LoadServices(ctx, cfg.Env(), cfg.Supervisor.Services); err != nil {
			splog.EndGroup()
			return biomecierrors.NewPhaseError("load services", err)
		}
		splog.EndGroup()
	}

	if err := biome.EnablePkgDirForUser(ctx, opts.Runner, opts.Paths); err != nil {
		return biomecierrors.NewPhaseError("enable unprivileged installs", err)
	}

	return nil
}

// exportEnvironment exports the fixed environment to the current process and
// to the rest of the job, so every later child process inherits it.
func exportEnvironment(cfg *config.Config) error {
	for _, kv := range cfg.Env() {
		key, value, _ := strings.Cut(kv, "=")
		if err := ci.ExportVariable(key, value); err != nil {
			return err
		}
	}
	return nil
}

// restoreCache restores the artifact cache at most once per job, guarded by
// the restore marker. The marker is written before the restore runs so a
// crash mid-restore still prevents a duplicate attempt.
func restoreCache(ctx context.Context, opts Options) error {
	paths := opts.Paths
	splog := opts.Splog

	if cache.MarkerExists(paths.RestoreMarker()) {
		splog.Info("Cache already restored this job, skipping")
		return nil
	}

	if err := cache.WriteMarker(paths.RestoreMarker()); err != nil {
		return err
	}

	matched, err := opts.Store.Restore(ctx, opts.Config.CacheKey, paths.ArtifactDir())
	if err != nil {
		return err
	}
	if matched != "" {
		splog.Info("Cache restored from key %s", matched)
	} else {
		splog.Info("No cache found for key %s", opts.Config.CacheKey)
	}

	if err := cache.WriteMarker(paths.RestoreMarker()); err != nil {
		return err
	}

	// A save marker left over from a previous partial job would wrongly
	// short-circuit this job's save.
	if cache.MarkerExists(paths.SaveMarker()) {
		splog.Warn("Removing stale save marker left by a previous job")
	}
	return cache.RemoveMarker(paths.SaveMarker())
}
