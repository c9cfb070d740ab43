package person

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/access"
	"github.com/outreachworks/followup/pkg/sdk"
)

var createInput sdk.CreatePersonInput

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a person to follow up with",
	Long: `Adds a new person. Name, phone, address, and inviter are required;
notes are optional.`,
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

		created, err := entities.CreatePerson(ctx, createInput)
		if err != nil {
			return describeFailure(fmt.Errorf("failed to add person: %w", err))
		}

		pterm.Success.Printf("Added %s\n", created.Name)
		fmt.Printf("ID: %s\n", created.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createInput.Name, "name", "", "Person's name (required)")
	createCmd.Flags().StringVar(&createInput.Phone, "phone", "", "Phone number (required)")
	createCmd.Flags().StringVar(&createInput.Address, "address", "", "Home address (required)")
	createCmd.Flags().StringVar(&createInput.Inviter, "inviter", "", "Who invited them (required)")
	createCmd.Flags().StringVar(&createInput.Notes, "notes", "", "Free-form notes")
}
