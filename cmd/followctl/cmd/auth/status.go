package auth

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		store, err := cfg.Provider.Sessions()
		if err != nil {
			return err
		}

		s := store.Read()
		if !s.Authenticated || s.Identity == nil {
			if s.LastError != "" {
				pterm.Warning.Printf("Last sign-in attempt failed: %s\n", s.LastError)
			}
			return fmt.Errorf("not logged in")
		}

		pterm.DefaultSection.Println("Authentication Status")

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Username:\t%s\n", s.Identity.Username)
		fmt.Fprintf(w, "Role:\t%s\n", s.Identity.Role)
		if expiry, ok := session.CredentialExpiry(s.Credential); ok {
			fmt.Fprintf(w, "Token expires:\t%s\n", expiry.Format(time.RFC1123))
			if time.Now().After(expiry) {
				w.Flush()
				pterm.Warning.Println("Token has expired; run 'followctl auth login'")
				return nil
			}
		}
		w.Flush()

		return nil
	},
}
