package person

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/pkg/sdk"
)

var listSearch string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your persons",
	Long: `Lists the persons you are following up with, newest first.
Use --search to filter by name, phone, address, or inviter.`,
	Args: cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		entities, guard, err := controllers(cobraCmd.Context())
		if err != nil {
			return err
		}
		if err := gate(guard, access.ResourcePersons); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cobraCmd.Context(), 10*time.Second)
		defer cancel()

		if err := entities.LoadPersons(ctx); err != nil {
			return describeFailure(fmt.Errorf("failed to list persons: %w", err))
		}

		view := entities.Cache().Snapshot()
		matched := filterPersons(view.Persons, listSearch)

		if len(matched) == 0 {
			if listSearch != "" {
				fmt.Printf("No persons match %q\n", listSearch)
			} else {
				fmt.Println("No persons found")
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tADDRESS\tINVITER\tADDED")
		for _, p := range matched {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Phone, orDash(p.Address), orDash(p.Inviter),
				p.CreatedAt.Format(sdk.DateLayout))
		}
		w.Flush()

		cfg := config.MustFromContext(cobraCmd.Context())
		store, err := cfg.Provider.Sessions()
		if err == nil {
			if s := store.Read(); guard.CanEnterAdmin(s.Identity) {
				pterm.Info.Println("Admin views available: followctl admin users")
			}
		}
		return nil
	},
}

// filterPersons keeps persons whose name, phone, address, or inviter contains
// the query, case-insensitively. An empty query keeps everything.
func filterPersons(persons []sdk.Person, query string) []sdk.Person {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return persons
	}
	matched := make([]sdk.Person, 0, len(persons))
	for _, p := range persons {
		haystack := strings.ToLower(p.Name + " " + p.Phone + " " + p.Address + " " + p.Inviter)
		if strings.Contains(haystack, query) {
			matched = append(matched, p)
		}
	}
	return matched
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "Filter by name, phone, address, or inviter")
}
