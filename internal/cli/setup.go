package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biome-sh/biomeci/internal/actions"
	"github.com/biome-sh/biomeci/internal/biome"
	"github.com/biome-sh/biomeci/internal/cache"
	"github.com/biome-sh/biomeci/internal/config"
	"github.com/biome-sh/biomeci/internal/output"
	"github.com/biome-sh/biomeci/internal/run"
)

// buildOptions assembles the collaborators both commands share.
func buildOptions(cacheConfigPath string) (actions.Options, error) {
	cfg := config.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return actions.Options{}, fmt.Errorf("resolve home directory: %w", err)
	}

	backendCfg, err := cache.LoadBackendConfig(cacheConfigPath)
	if err != nil {
		return actions.Options{}, err
	}
	store, err := cache.NewS3Store(backendCfg)
	if err != nil {
		return actions.Options{}, err
	}

	return actions.Options{
		Config: cfg,
		Runner: run.NewRunner(),
		Store:  store,
		Splog:  output.NewSplog(),
		Paths:  biome.DefaultPaths(home),
	}, nil
}

// newSetupCmd creates the setup command
func newSetupCmd() *cobra.Command {
	var cacheConfigPath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install bio, restore the package cache and install declared dependencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := buildOptions(cacheConfigPath)
			if err != nil {
				return err
			}
			defer opts.Splog.Close()

			return actions.Setup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&cacheConfigPath, "cache-config", cache.DefaultBackendConfigPath,
		"Path to the cache backend configuration file")

	return cmd
}
