package auth

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := sessionController(cmd.Context())
		if err != nil {
			return err
		}

		sessions.Logout()
		fmt.Println("Logged out successfully")
		return nil
	},
}
