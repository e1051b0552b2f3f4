// Package cli wires the biomeci commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "biomeci",
		Short: "Biomeci provisions the Biome package runtime inside a CI job",
		Long: `Biomeci provisions the Biome package runtime inside a CI job: it installs
the bio binary if needed, restores and saves a package cache across job runs,
installs declared packages and optionally starts a supervisor with services.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newSaveCacheCmd())

	return rootCmd
}
