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

var personsCmd = &cobra.Command{
	Use:   "persons <user-id>",
	Short: "List the persons tracked by one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		userID := args[0]

		entities, guard, err := controllers(cobraCmd.Context())
		if err != nil {
			return err
		}
		if err := gate(guard); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		persons, err := entities.AdminPersonsForUser(ctx, userID)
		if err != nil {
			return describeFailure(fmt.Errorf("failed to list persons for %s: %w", userID, err))
		}

		if len(persons) == 0 {
			fmt.Println("No persons found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tINVITER\tADDED")
		for _, p := range persons {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Phone, p.Inviter, p.CreatedAt.Format(sdk.DateLayout))
		}
		w.Flush()
		return nil
	},
}
