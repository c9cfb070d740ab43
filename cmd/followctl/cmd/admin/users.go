package admin

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/pkg/sdk"
)

var usersSearch string

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every user with tracked persons",
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

		users, err := entities.AdminListUsers(ctx)
		if err != nil {
			return describeFailure(fmt.Errorf("failed to list users: %w", err))
		}

		matched := filterUsers(users, usersSearch)
		if len(matched) == 0 {
			if usersSearch != "" {
				fmt.Printf("No users match %q\n", usersSearch)
			} else {
				fmt.Println("No users found")
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
		for _, u := range matched {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Username, u.Role)
		}
		w.Flush()
		return nil
	},
}

func filterUsers(users []sdk.Identity, query string) []sdk.Identity {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return users
	}
	matched := make([]sdk.Identity, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), query) {
			matched = append(matched, u)
		}
	}
	return matched
}

func init() {
	usersCmd.Flags().StringVar(&usersSearch, "search", "", "Filter by username")
}
