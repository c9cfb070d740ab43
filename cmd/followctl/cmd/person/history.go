package person

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/control"
	"github.com/outreachworks/followup/pkg/sdk"
)

var historyCmd = &cobra.Command{
	Use:   "history <person-id>",
	Short: "Show a person's weekly report history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		personID := args[0]

		entities, guard, err := controllers(cobraCmd.Context())
		if err != nil {
			return err
		}
		if err := gate(guard, access.ResourceReports); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		history, err := entities.LoadPersonReports(ctx, personID)
		if err != nil {
			if errors.Is(err, control.ErrUnreachableView) {
				pterm.Warning.Printf("No report history available for %s\n", personID)
				return err
			}
			return fmt.Errorf("failed to load report history: %w", err)
		}

		pterm.DefaultSection.Printf("Reports for %s", history.PersonName)

		if len(history.Reports) == 0 {
			fmt.Println("No reports yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WEEK_OF\tCONTACTED\tRESPONSE\tLOGGED")
		for _, r := range history.Reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				r.WeekOf.Format(sdk.DateLayout), yesNo(r.Contacted), r.Response,
				r.CreatedAt.Format(sdk.DateLayout))
		}
		w.Flush()
		return nil
	},
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
