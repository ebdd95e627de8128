package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperengineering/moltbook"
)

var (
	// ErrNotFound is returned when no credential file exists.
	ErrNotFound = errors.New("credentials: no saved credential")

	// ErrCorrupt is returned when the credential file cannot be parsed or holds no key.
	ErrCorrupt = errors.New("credentials: saved credential is unreadable")
)

// Credential is the persisted identity of an agent.
// APIKey must never be logged or displayed unmasked.
type Credential struct {
	APIKey    string `json:"api_key"`
	AgentName string `json:"agent_name,omitempty"`
}

// String masks the key so a Credential is safe to print by accident.
func (c Credential) String() string {
	if c.AgentName == "" {
		return moltbook.MaskKey(c.APIKey)
	}
	return c.AgentName + " (" + moltbook.MaskKey(c.APIKey) + ")"
}

// Store reads and writes the credential file.
type Store struct {
	path string
}

// NewStore returns a store for path. An empty path means DefaultPath().
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Path returns the credential file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the saved credential. The key is sanitized on the way in.
func (s *Store) Load() (Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	cred.APIKey = moltbook.SanitizeKey(cred.APIKey)
	if cred.APIKey == "" {
		return Credential{}, fmt.Errorf("%w: api_key is empty", ErrCorrupt)
	}
	return cred, nil
}

// Save writes cred atomically: a temp file in the same directory is
// written, synced, restricted to 0600 and renamed over the destination.
func (s *Store) Save(cred Credential) error {
	cred.APIKey = moltbook.SanitizeKey(cred.APIKey)
	if cred.APIKey == "" {
		return moltbook.ErrEmptyKey
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("credentials: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credentials: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("credentials: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0o600); err != nil {
		return fmt.Errorf("credentials: chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("credentials: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("credentials: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credentials: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("credentials: rename temp file: %w", err)
	}
	committed = true
	return nil
}

// Delete removes the saved credential. A missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credentials: remove: %w", err)
	}
	return nil
}
