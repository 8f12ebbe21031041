// Package cli implements the gallery command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repogallery/internal/logger"
)

var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Build a project gallery from an organisation's repositories",
	Long: `Discovers the student project repositories of a GitHub organisation,
extracts their README, metadata file and asset directory, and writes one
normalised record per repository to a JSON dataset.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default "+defaultConfigName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
