package sdk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/client/rp/cli"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// ExternalIdentityAssertion is the outcome of a device-code sign-in against an
// external identity provider. IDToken is the opaque assertion forwarded to the
// tracker server for verification; the remaining fields exist only to display
// a confirmation message.
type ExternalIdentityAssertion struct {
	IDToken   string
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// AcquireExternalIDToken runs the OIDC Device Authorization Flow (RFC 8628)
// against the given identity provider and returns the resulting ID token. The
// token is not a tracker credential: it must still be exchanged through
// Client.VerifyExternalToken.
//
// The provider's device authorization endpoints are found through OIDC
// discovery from the issuer.
func AcquireExternalIDToken(ctx context.Context, issuer, clientID string) (*ExternalIdentityAssertion, error) {
	scopes := []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}

	relyingParty, err := rp.NewRelyingPartyOIDC(
		ctx,
		issuer,
		clientID,
		"", // clientSecret - empty for public client (device flow)
		"", // redirectURI - not used for device flow
		scopes,
		rp.WithHTTPClient(discoveryHTTPClient()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to discover identity provider at %s: %w", issuer, err)
	}

	authResponse, err := rp.DeviceAuthorization(ctx, scopes, relyingParty, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start device authorization flow: %w", err)
	}

	printDeviceCodeInstructions(authResponse)

	// Best effort; the printed URL covers the case where no browser opens.
	if authResponse.VerificationURIComplete != "" {
		cli.OpenBrowser(authResponse.VerificationURIComplete)
	}

	interval := time.Duration(authResponse.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}

	token, err := rp.DeviceAccessToken(ctx, authResponse.DeviceCode, interval, relyingParty)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}

	if token.IDToken == "" {
		return nil, fmt.Errorf("identity provider returned no ID token")
	}

	assertion := &ExternalIdentityAssertion{
		IDToken:   token.IDToken,
		ExpiresAt: time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, token.IDToken, relyingParty.IDTokenVerifier())
	if err == nil {
		assertion.Subject = claims.Subject
		assertion.Email = claims.Email
	}

	return assertion, nil
}

func discoveryHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}

func printDeviceCodeInstructions(authResponse *oidc.DeviceAuthorizationResponse) {
	fmt.Println("============================================================")
	fmt.Printf("Your user code is: %s\n", authResponse.UserCode)
	fmt.Println("")
	fmt.Println("Please visit the following URL in your browser to sign in:")
	fmt.Printf("  %s\n", authResponse.VerificationURI)
	if authResponse.VerificationURIComplete != "" {
		fmt.Println("")
		fmt.Println("Or use this direct link (includes code):")
		fmt.Printf("  %s\n", authResponse.VerificationURIComplete)
	}
	fmt.Println("============================================================")
	fmt.Println("Waiting for authorization...")
	fmt.Println("")
}
