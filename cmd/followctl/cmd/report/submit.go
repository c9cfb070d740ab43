package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/control"
	"github.com/outreachworks/followup/pkg/sdk"
)

var (
	submitPersonID  string
	submitContacted bool
	submitResponse  string
	submitWeekOf    string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record a weekly report for a person",
	Long: `Records a weekly outreach report. --week-of defaults to today.
The report is saved on the server; view it with 'followctl person history'.`,
	Args: cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		entities, guard, err := controllers(cobraCmd.Context())
		if err != nil {
			return err
		}
		if err := gate(guard, access.ResourceReports); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		saved, err := entities.SubmitWeeklyReport(ctx, submitPersonID, submitContacted, submitResponse, submitWeekOf)
		if err != nil {
			if errors.Is(err, control.ErrSessionInvalidated) {
				return fmt.Errorf("%w; run 'followctl auth login'", err)
			}
			return fmt.Errorf("failed to submit report: %w", err)
		}

		pterm.Success.Printf("Report recorded for week of %s\n", saved.WeekOf.Format(sdk.DateLayout))
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitPersonID, "person", "", "Person ID the report is about (required)")
	submitCmd.Flags().BoolVar(&submitContacted, "contacted", false, "Whether contact was made this week")
	submitCmd.Flags().StringVar(&submitResponse, "response", "", "How the person responded (required)")
	submitCmd.Flags().StringVar(&submitWeekOf, "week-of", time.Now().Format(sdk.DateLayout), "Week the report covers (YYYY-MM-DD)")
}
