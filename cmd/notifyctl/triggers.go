package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	bt "laundry-workers/internal/workers/marketing/behavioral-triggers"
)

var (
	previewTriggerID string
	previewAt        string
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Inspect behavioral triggers",
}

var triggersPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Evaluate triggers and print who would be messaged",
	RunE:  runTriggersPreview,
}

func init() {
	triggersPreviewCmd.Flags().StringVar(&previewTriggerID, "trigger", "", "only evaluate this trigger id")
	triggersPreviewCmd.Flags().StringVar(&previewAt, "at", "", "evaluate as of this RFC3339 time (default now)")
}

func runTriggersPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	scanner := bt.NewScanner(db, cliLogger())
	if previewAt != "" {
		at, err := time.Parse(time.RFC3339, previewAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		scanner.WithClock(func() time.Time { return at.UTC() })
	}

	evs, err := scanner.Evaluate(cmd.Context(), previewTriggerID)
	if err != nil {
		return err
	}
	return renderEvaluations(cmd.OutOrStdout(), evs)
}

// renderEvaluations prints one row per match, and one row for triggers that matched nobody
// or failed.
func renderEvaluations(w io.Writer, evs []bt.Evaluation) error {
	var rows [][]string
	for _, ev := range evs {
		s := ev.Summary()
		if s.Error != "" || len(ev.Matches) == 0 {
			rows = append(rows, []string{s.TriggerID, string(s.Type), s.CampaignID, "-", "-", "-", s.Error})
			continue
		}
		for _, m := range ev.Matches {
			status := "send"
			if m.Suppressed {
				status = "cooldown"
			}
			rows = append(rows, []string{s.TriggerID, string(s.Type), s.CampaignID, m.CustomerID, m.Name, status, ""})
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header("Trigger", "Type", "Campaign", "Customer", "Name", "Status", "Error")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
