package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driving"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of every record in the dataset",
	Long: `Lists each record with its status, asset counts and warnings.
Records that are not complete are the ones to follow up by hand.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusStyles struct {
	header   lipgloss.Style
	complete lipgloss.Style
	partial  lipgloss.Style
	failed   lipgloss.Style
	muted    lipgloss.Style
}

func newStatusStyles() statusStyles {
	return statusStyles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		complete: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		partial:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func (s statusStyles) forStatus(status domain.RecordStatus) lipgloss.Style {
	switch status {
	case domain.StatusComplete:
		return s.complete
	case domain.StatusPartial:
		return s.partial
	}
	return s.failed
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}

	report, err := svc.Status.Report(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No dataset yet. Run 'gallery fetch' first.")
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Print(renderStatus(report, newStatusStyles()))
	return nil
}

func renderStatus(report *driving.StatusReport, st statusStyles) string {
	out := st.header.Render(fmt.Sprintf("%-9s %-50s %s", "STATUS", "REPOSITORY", "ASSETS")) + "\n"

	for _, line := range report.Records {
		r := line.Record
		assets := fmt.Sprintf("%d", len(r.Assets))
		if report.HasManifest {
			assets = fmt.Sprintf("%d/%d local", line.AssetsLocal, len(r.Assets))
			if line.AssetsFailed > 0 {
				assets += fmt.Sprintf(", %d failed", line.AssetsFailed)
			}
		}
		status := st.forStatus(r.Status).Render(fmt.Sprintf("%-9s", r.Status))
		out += fmt.Sprintf("%s %-50s %s\n", status, r.ID, assets)
		for _, w := range r.Warnings {
			out += st.muted.Render("          - "+w) + "\n"
		}
	}

	out += fmt.Sprintf("\n%d records: %s, %s, %s\n", len(report.Records),
		st.complete.Render(fmt.Sprintf("%d complete", report.Complete)),
		st.partial.Render(fmt.Sprintf("%d partial", report.Partial)),
		st.failed.Render(fmt.Sprintf("%d failed", report.Failed)))
	if !report.HasManifest {
		out += st.muted.Render("Assets not mirrored yet. Run 'gallery assets'.") + "\n"
	}
	return out
}
