// Package control orchestrates the session store, entity cache and remote
// gateway. Controllers own the failure policy: they catch every gateway
// error, leave the stores in a defined state, and return a classified error
// for the caller to present.
package control

import (
	"errors"
	"fmt"
)

// ValidationError is a client-side precondition failure. It never reaches the
// network and never mutates the session or the entity cache.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ErrUnreachableView marks a failure that makes the requested view
// unreachable (not found, or not visible to the caller). The caller is
// expected to navigate away rather than render an error in place.
var ErrUnreachableView = errors.New("view is not reachable")

// ErrSessionInvalidated marks an authorization failure on an authenticated
// call. The controller has already forced a logout and cleared the cache when
// returning it.
var ErrSessionInvalidated = errors.New("session is no longer valid")

// Fallback messages shown when the server provides none.
const (
	loginFailedMessage    = "Login failed. Please check your connection and try again."
	personsFetchMessage   = "Failed to fetch persons."
	personCreateMessage   = "Failed to create person."
	reportSubmitMessage   = "Failed to submit report."
	historyFetchMessage   = "Failed to fetch report history."
	adminUsersMessage     = "Failed to fetch users who manage records."
	adminPersonsMessage   = "Failed to fetch people for user."
	allReportsMessage     = "Failed to fetch reports."
	missingTokenMessage   = "No identity token received. Please try signing in again."
	registerFailedMessage = "Registration failed. Please try again."
)
