package person

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/internal/control"
)

// PersonCmd is the parent command for person operations
var PersonCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage the people you follow up with",
	Long:  `Commands for listing and adding persons and reviewing their report history.`,
}

func init() {
	PersonCmd.AddCommand(listCmd)
	PersonCmd.AddCommand(createCmd)
	PersonCmd.AddCommand(historyCmd)
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

// gate maps a guard decision to a command error; only Allow proceeds.
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

func describeFailure(err error) error {
	if errors.Is(err, control.ErrSessionInvalidated) {
		return fmt.Errorf("%w; run 'followctl auth login'", err)
	}
	return err
}
