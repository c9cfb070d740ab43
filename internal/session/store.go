package session

import (
	"errors"
	"sync"

	"github.com/outreachworks/followup/pkg/sdk"
)

// ErrNoRecord is returned by a RecordStore when no session has been
// persisted.
var ErrNoRecord = errors.New("no session record")

// RecordStore persists the session across process restarts.
type RecordStore interface {
	Save(Session) error
	Load() (*Session, error)
	Delete() error
}

// Store is the process-wide owner of the Session. All mutations go through
// its methods; reads return copies. Only the session controller writes to it.
type Store struct {
	mu      sync.RWMutex
	cur     Session
	records RecordStore
}

// Ensure the store can feed credentials to the SDK client at send time.
var _ sdk.CredentialSource = (*Store)(nil)

// NewStore creates a Store initialized from the durable record. An absent or
// malformed record yields the unauthenticated zero state. Authenticated is
// recomputed from credential presence; a stale persisted flag is ignored.
func NewStore(records RecordStore) *Store {
	s := &Store{records: records}

	if records == nil {
		return s
	}

	rec, err := records.Load()
	if err != nil || rec == nil {
		return s
	}

	restored := *rec
	restored.normalize()
	restored.Loading = false
	restored.LastError = ""
	s.cur = restored
	return s
}

// Read returns a copy of the current session.
func (s *Store) Read() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Credential implements sdk.CredentialSource, returning the freshest
// credential for every outbound call.
func (s *Store) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Credential, s.cur.Credential != ""
}

// ApplyLoginSuccess installs the credential and identity, clears any error
// and loading flag, and durably persists the session. The in-memory state is
// updated even when persisting fails; the error reports the persistence
// problem only.
func (s *Store) ApplyLoginSuccess(credential string, identity sdk.Identity) error {
	s.mu.Lock()
	id := identity
	s.cur = Session{
		Credential: credential,
		Identity:   &id,
	}
	s.cur.normalize()
	rec := s.cur.sanitized()
	s.mu.Unlock()

	if s.records == nil {
		return nil
	}
	return s.records.Save(rec)
}

// ApplyLoginFailure resets to the unauthenticated zero state, removes the
// durable record, and records the triggering message. The message stays
// visible until the next action clears it.
func (s *Store) ApplyLoginFailure(message string) {
	s.mu.Lock()
	s.cur = Session{LastError: message}
	s.cur.normalize()
	s.mu.Unlock()

	s.removeRecord()
}

// SetLoading toggles the transient loading flag.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.cur.Loading = v
	s.mu.Unlock()
}

// ClearError drops the last error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.cur.LastError = ""
	s.mu.Unlock()
}

// Logout unconditionally resets to the unauthenticated zero state and removes
// the durable record. It never fails and is idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.cur = Session{}
	s.mu.Unlock()

	s.removeRecord()
}

// removeRecord deletes the durable record, best effort. A record that cannot
// be removed must not keep the in-memory session alive.
func (s *Store) removeRecord() {
	if s.records == nil {
		return
	}
	_ = s.records.Delete()
}
