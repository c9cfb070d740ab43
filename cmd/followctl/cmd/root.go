package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/cmd/followctl/cmd/admin"
	"github.com/outreachworks/followup/cmd/followctl/cmd/auth"
	"github.com/outreachworks/followup/cmd/followctl/cmd/person"
	"github.com/outreachworks/followup/cmd/followctl/cmd/report"
	"github.com/outreachworks/followup/internal/client"
	"github.com/outreachworks/followup/internal/config"
)

var (
	serverURL      string
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "followctl",
	Short: "Follow-up CLI - contact outreach tracking client",
	Long: `followctl is the command-line client for the contact follow-up tracker.
Use it to sign in, manage the people you are following up with, and log
weekly outreach reports. Admins can additionally review every user's
persons and reports.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if v := os.Getenv("FOLLOWUP_SERVER"); v != "" && !cmd.Flags().Changed("server") {
			serverURL = v
		}
		if os.Getenv("FOLLOWUP_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}

		provider := client.NewProvider(serverURL)
		// FOLLOWUP_TOKEN bypasses the durable session for CI/scripting use.
		if token := os.Getenv("FOLLOWUP_TOKEN"); token != "" {
			provider.SetBearerToken(token)
		}

		cfg := &config.GlobalConfig{
			ServerURL:      serverURL,
			NonInteractive: nonInteractive,
			OIDCIssuer:     os.Getenv("FOLLOWUP_OIDC_ISSUER"),
			OIDCClientID:   os.Getenv("FOLLOWUP_OIDC_CLIENT_ID"),
			Provider:       provider,
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5001/api", "Tracker API server URL (also set via FOLLOWUP_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via FOLLOWUP_NON_INTERACTIVE=1)")
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(person.PersonCmd)
	rootCmd.AddCommand(report.ReportCmd)
	rootCmd.AddCommand(admin.AdminCmd)
}
