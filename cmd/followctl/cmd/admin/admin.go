package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/internal/control"
)

// AdminCmd is the parent command for cross-user admin views
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Review all users' persons and reports (admin only)",
	Long:  `Commands for the admin views: the user roster, any user's persons, and every report.`,
}

func init() {
	AdminCmd.AddCommand(usersCmd)
	AdminCmd.AddCommand(personsCmd)
	AdminCmd.AddCommand(reportsCmd)
}

func controllers(ctx context.Context) (*control.EntityController, *access.Guard, error) {
	cfg := config.MustFromContext(ctx)
	entities, err := cfg.Provider.EntityController()
	if err != nil {
		return nil, nil, err
	}
	guard, err := cfg.Provider.Guard()
	if err != nil {
		return nil, nil, err
	}
	return entities, guard, nil
}

// gate rejects non-admin callers. An authenticated non-admin is pointed at
// the regular views rather than at login.
func gate(guard *access.Guard) error {
	switch d := guard.Check(access.ResourceAdmin); d {
	case access.Allow:
		return nil
	case access.RedirectToLogin:
		return fmt.Errorf("not logged in (run 'followctl auth login')")
	case access.RedirectToDefault:
		return fmt.Errorf("admin access required (see 'followctl person list' for your own persons)")
	default:
		return fmt.Errorf("session is busy (%s); try again", d)
	}
}

func describeFailure(err error) error {
	if errors.Is(err, control.ErrSessionInvalidated) {
		return fmt.Errorf("%w; run 'followctl auth login'", err)
	}
	return err
}
