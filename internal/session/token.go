package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/outreachworks/followup/pkg/sdk"
)

// CredentialExpiry extracts the expiry claim from the bearer credential
// without verifying it. The credential is opaque to the client, but the
// server issues JWTs in practice and the expiry is useful for status display.
// ok is false when the credential is not a JWT or carries no expiry.
func CredentialExpiry(credential string) (expiry time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// CredentialIdentity extracts the identity claims from the bearer credential
// without verifying it. Used by the ephemeral-token path, where no login
// response ever supplied an identity. ok is false when the credential is not
// a JWT or names no subject.
func CredentialIdentity(credential string) (*sdk.Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, false
	}

	id := &sdk.Identity{Role: sdk.RoleUser}
	for _, key := range []string{"id", "_id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			id.ID = v
			break
		}
	}
	if v, ok := claims["username"].(string); ok {
		id.Username = v
	}
	if v, ok := claims["role"].(string); ok && v != "" {
		id.Role = sdk.Role(v)
	}
	if id.ID == "" {
		return nil, false
	}
	return id, true
}
