package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch project repositories into the dataset",
	Long: `Discovers the organisation's repositories matching the configured name
pattern, extracts and normalises each one, and writes the dataset once
every repository has been processed. Problems with a single repository
are recorded as warnings on its record.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}

	cmd.Println("Fetching repositories...")
	summary, err := svc.Fetcher.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	cmd.Printf("Wrote %d records: %d complete, %d partial, %d failed\n",
		len(summary.Records), summary.Complete, summary.Partial, summary.Failed)
	for _, r := range summary.Records {
		if !r.NeedsFollowUp() {
			continue
		}
		cmd.Printf("  %s [%s] %s\n", r.ID, r.Status, strings.Join(r.Warnings, "; "))
	}
	return nil
}
