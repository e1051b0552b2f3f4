package actions

import (
	"context"

	"github.com/biome-sh/biomeci/internal/cache"
)

// SaveCache persists the installed-packages directory as a cache entry at
// most once per job, guarded by the save marker. The marker is written before
// the save so repeated teardown invocations cannot save twice; it stays
// written on failure and no retry is attempted.
func SaveCache(ctx context.Context, opts Options) error {
	paths := opts.Paths
	splog := opts.Splog

	if cache.MarkerExists(paths.SaveMarker()) {
		splog.Info("Cache already saved this job, skipping")
		return nil
	}

	if err := cache.WriteMarker(paths.SaveMarker()); err != nil {
		return err
	}

	id, err := opts.Store.Save(ctx, opts.Config.CacheKey, paths.PkgDir())
	if err != nil {
		return err
	}
	if id != "" {
		splog.Info("Cache saved as %s", id)
	} else {
		splog.Info("No cache entry was created")
	}
	return nil
}
