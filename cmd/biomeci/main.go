package main

import (
	"os"

	"github.com/biome-sh/biomeci/internal/cli"
	"github.com/biome-sh/biomeci/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		// Single error boundary: every propagated failure marks the job
		// step failed with its message.
		splog := output.NewSplog()
		splog.SetFailed(err)
		splog.Close()
		os.Exit(1)
	}
}
