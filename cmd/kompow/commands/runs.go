package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/logging"
)

// NewRunsCmd constructs the `kompow runs` command, which shows the recent
// pipeline stage history for a user.
func NewRunsCmd() *cobra.Command {
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent pipeline run history for a user",
		Long: `Show the recorded stage outcomes of recent pipeline runs, newest first.

Each line is one stage: profile, research, flashcards, or persist, with its
outcome and any skip reason or error detail.

Examples:
  kompow runs --user alice@example.com
  kompow runs --user alice@example.com --limit 40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			a, err := buildApp(ctx, log, false)
			if err != nil {
				return fmt.Errorf("runs: %w", err)
			}
			defer a.close()

			runs, err := a.svc.RecentRuns(ctx, userID, limit)
			if err != nil {
				return fmt.Errorf("runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Println("No recorded runs. Is run history enabled?")
				return nil
			}
			for _, r := range runs {
				line := fmt.Sprintf("%s  %-10s %-9s",
					r.CreatedAt.Format("2006-01-02 15:04:05"), r.Stage, r.Status)
				if r.Detail != "" {
					line += "  " + r.Detail
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose run history to show")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
