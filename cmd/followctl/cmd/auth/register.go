package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	registerUsername string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Creates a new tracker account. Registration does not sign you in;
run 'followctl auth login' afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if registerUsername == "" || registerPassword == "" {
			return fmt.Errorf("--username and --password are required")
		}

		sessions, err := sessionController(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		message, err := sessions.Register(ctx, registerUsername, registerPassword)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		pterm.Success.Println(message)
		pterm.Info.Println("Sign in with: followctl auth login --username " + registerUsername)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Username for the new account")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Password for the new account")
}
