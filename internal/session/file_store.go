package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFile = "session.json"

// FileStore implements RecordStore using a JSON file. This is the CLI's
// session persistence implementation.
type FileStore struct {
	path string
}

// Ensure FileStore implements RecordStore at compile time.
var _ RecordStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at ~/.followup.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewFileStoreAt(filepath.Join(home, ".followup"))
}

// NewFileStoreAt creates a FileStore rooted at dir, creating it when needed.
func NewFileStoreAt(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dir, sessionFile),
	}, nil
}

// Save writes the session record to the file. The record is sanitized first:
// loading and error state are never persisted.
func (s *FileStore) Save(sess Session) error {
	data, err := json.MarshalIndent(sess.sanitized(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load reads the session record from the file. ErrNoRecord means no session
// has been persisted.
func (s *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes the session record file.
func (s *FileStore) Delete() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(s.path)
}
