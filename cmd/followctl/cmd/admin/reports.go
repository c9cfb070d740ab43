package admin

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/pkg/sdk"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List every weekly report across all users",
	Args:  cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		entities, guard, err := controllers(cobraCmd.Context())
		if err != nil {
			return err
		}
		if err := gate(guard); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		if err := entities.LoadAllReports(ctx); err != nil {
			return describeFailure(fmt.Errorf("failed to list reports: %w", err))
		}

		view := entities.Cache().Snapshot()
		if len(view.AllReports) == 0 {
			fmt.Println("No reports found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WEEK_OF\tPERSON\tCONTACTED\tRESPONSE\tREPORTED_BY")
		for _, r := range view.AllReports {
			contacted := "no"
			if r.Contacted {
				contacted = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.WeekOf.Format(sdk.DateLayout), r.Person, contacted, r.Response, r.ReportedBy)
		}
		w.Flush()
		return nil
	},
}
