package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Download the assets referenced by the dataset",
	Long: `Mirrors every asset URL of the dataset's records into the asset
directory and writes the asset manifest. Files already present are
skipped, so running it again downloads nothing new.`,
	Args: cobra.NoArgs,
	RunE: runAssets,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
}

func runAssets(cmd *cobra.Command, _ []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}

	records, err := svc.Dataset.Read(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		return errors.New("no dataset found, run 'gallery fetch' first")
	}
	if err != nil {
		return err
	}

	summary, err := svc.Assets.Mirror(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("asset fetch failed: %w", err)
	}

	cmd.Printf("Assets: %d downloaded, %d skipped, %d failed\n",
		summary.Downloaded, summary.Skipped, summary.Failed)
	for _, e := range summary.Entries {
		if e.Outcome.Result == domain.AssetFailed {
			cmd.Printf("  %s %s: %s\n", e.RecordID, e.SourceURL, e.Outcome.Warning)
		}
	}
	return nil
}
