package cli

import (
	"github.com/spf13/cobra"

	"github.com/biome-sh/biomeci/internal/actions"
	"github.com/biome-sh/biomeci/internal/cache"
)

// newSaveCacheCmd creates the save-cache command
func newSaveCacheCmd() *cobra.Command {
	var cacheConfigPath string

	cmd := &cobra.Command{
		Use:   "save-cache",
		Short: "Persist the installed-packages directory as a cache entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := buildOptions(cacheConfigPath)
			if err != nil {
				return err
			}
			defer opts.Splog.Close()

			return actions.SaveCache(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&cacheConfigPath, "cache-config", cache.DefaultBackendConfigPath,
		"Path to the cache backend configuration file")

	return cmd
}
