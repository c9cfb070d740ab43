package auth

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/internal/control"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for signing in, registering, and inspecting the session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}

func sessionController(ctx context.Context) (*control.SessionController, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.Provider.SessionController()
}
