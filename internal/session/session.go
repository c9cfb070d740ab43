// Package session owns the authenticated session: the in-memory state, its
// durable file record, and the mutations the session controller applies to it.
package session

import (
	"github.com/outreachworks/followup/pkg/sdk"
)

// Session is the authentication state: the bearer credential, the identity it
// belongs to, and the transient UI flags. Authenticated is derived from
// credential presence and is never trusted from a persisted record.
type Session struct {
	Credential    string        `json:"credential"`
	Identity      *sdk.Identity `json:"identity"`
	Authenticated bool          `json:"authenticated"`
	Loading       bool          `json:"loading"`
	LastError     string        `json:"lastError,omitempty"`
}

// normalize re-derives the invariants: Authenticated follows credential
// presence, and a credential without an identity (or the reverse) is a
// partial session and collapses to the zero state.
func (s *Session) normalize() {
	if s.Credential == "" || s.Identity == nil {
		s.Credential = ""
		s.Identity = nil
	}
	s.Authenticated = s.Credential != ""
}

// sanitized returns a copy safe to persist: transient flags never reach the
// durable record with a stale truthy value.
func (s Session) sanitized() Session {
	c := s
	c.normalize()
	c.Loading = false
	c.LastError = ""
	return c
}
