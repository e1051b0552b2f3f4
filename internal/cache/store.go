// Package cache persists directory snapshots across job runs through a
// key-value artifact store, and provides the marker files that keep the
// restore and save operations to at most one per job.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
)

// Store is the platform artifact cache. Restore returns the matched key, or
// "" when there is no entry for the key (a miss is not an error). Save
// returns the identifier of the newly created cache entry.
type Store interface {
	Restore(ctx context.Context, key, dir string) (string, error)
	Save(ctx context.Context, key, dir string) (string, error)
}

// MarkerExists reports whether a guarded operation has already been attempted
// this job.
func MarkerExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteMarker records that a guarded operation has been attempted. The marker
// is written before the operation runs, so a crash mid-operation still
// prevents a duplicate attempt. Zero-byte; existence is the whole record.
func WriteMarker(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0644)
}

// RemoveMarker deletes a marker, ignoring its absence.
func RemoveMarker(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeKey maps an arbitrary cache key onto an object-key-safe string.
func sanitizeKey(key string) string {
	return keySanitizer.ReplaceAllString(key, "-")
}
