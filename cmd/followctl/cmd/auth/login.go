package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/outreachworks/followup/internal/config"
	"github.com/outreachworks/followup/internal/control"
	"github.com/outreachworks/followup/pkg/sdk"
)

var (
	loginUsername string
	loginPassword string
	loginGoogle   bool
	loginIssuer   string
	loginClientID string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the tracker",
	Long: `Signs in to the tracker and stores the session on disk.

Two methods are supported:
1. Username/password (default): Use --username and --password. When a
   terminal is available the password can be entered at a prompt instead.
2. Google Sign-In: Use --google to run an OIDC device authorization flow
   against the identity provider, then exchange the resulting ID token
   with the tracker server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		sessions, err := cfg.Provider.SessionController()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		if loginGoogle {
			err = loginWithGoogle(ctx, cfg, sessions)
		} else {
			err = loginWithPassword(ctx, cfg, sessions)
		}
		if err != nil {
			var verr *control.ValidationError
			if errors.As(err, &verr) {
				return err
			}
			// The store keeps the failure reason for `auth status`.
			return fmt.Errorf("login failed: %w", err)
		}

		s := sessions.Sessions().Read()
		if s.Identity != nil {
			pterm.Success.Printf("Logged in as %s (%s)\n", s.Identity.Username, s.Identity.Role)
		} else {
			pterm.Success.Println("Logged in")
		}
		return nil
	},
}

func loginWithPassword(ctx context.Context, cfg *config.GlobalConfig, sessions *control.SessionController) error {
	if loginUsername == "" {
		return fmt.Errorf("--username is required")
	}
	if loginPassword == "" {
		if cfg.NonInteractive {
			return fmt.Errorf("cannot prompt in non-interactive mode: specify --password explicitly")
		}
		entered, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			Show("Password")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		loginPassword = entered
	}
	return sessions.Login(ctx, loginUsername, loginPassword)
}

func loginWithGoogle(ctx context.Context, cfg *config.GlobalConfig, sessions *control.SessionController) error {
	issuer := loginIssuer
	if issuer == "" {
		issuer = cfg.OIDCIssuer
	}
	clientID := loginClientID
	if clientID == "" {
		clientID = cfg.OIDCClientID
	}
	if issuer == "" || clientID == "" {
		return fmt.Errorf("--issuer and --client-id are required for --google (or set FOLLOWUP_OIDC_ISSUER / FOLLOWUP_OIDC_CLIENT_ID)")
	}

	assertion, err := sdk.AcquireExternalIDToken(ctx, issuer, clientID)
	if err != nil {
		return fmt.Errorf("device authorization failed: %w", err)
	}
	if assertion.Email != "" {
		pterm.Info.Printf("Verified external identity: %s\n", assertion.Email)
	}

	return sessions.LoginWithExternalIdentity(ctx, assertion.IDToken)
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginGoogle, "google", false, "Sign in with Google via OIDC device flow")
	loginCmd.Flags().StringVar(&loginIssuer, "issuer", "", "OIDC issuer URL for --google (default: FOLLOWUP_OIDC_ISSUER)")
	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "OIDC client ID for --google (default: FOLLOWUP_OIDC_CLIENT_ID)")
}
