package report

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/internal/control"
)

// ReportCmd is the parent command for report operations
var ReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Log weekly outreach reports",
	Long:  `Commands for recording weekly contact reports against a person.`,
}

func init() {
	ReportCmd.AddCommand(submitCmd)
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

func gate(guard *access.Guard, resource string) error {
	switch d := guard.Check(resource); d {
	case access.Allow:
		return nil
	case access.RedirectToLogin:
		return fmt.Errorf("not logged in (run 'followctl auth login')")
	case access.RedirectToDefault:
		return fmt.Errorf("your role cannot access this view")
	default:
		return fmt.Errorf("session is busy (%s); try again", d)
	}
}
