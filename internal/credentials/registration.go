package credentials

import (
	"errors"
	"fmt"

	"github.com/hyperengineering/moltbook"
)

// ErrOccupied is returned by CheckVacant when a usable credential is
// already saved.
var ErrOccupied = errors.New("credentials: a credential is already saved")

// FromRegistration extracts the issued key and agent name from a
// registration response, which nests them under "agent" or returns them at
// top level.
func FromRegistration(fields map[string]any) (Credential, bool) {
	key := stringAt(fields, "agent", "api_key")
	if key == "" {
		key = stringAt(fields, "api_key")
	}
	key = moltbook.SanitizeKey(key)
	if key == "" {
		return Credential{}, false
	}
	name := stringAt(fields, "agent", "name")
	if name == "" {
		name = stringAt(fields, "name")
	}
	return Credential{APIKey: key, AgentName: name}, true
}

// CheckVacant reports whether an issued key can be saved without replacing
// a working credential. A missing or unreadable file counts as vacant.
func (s *Store) CheckVacant() error {
	cred, err := s.Load()
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		return nil
	case err != nil:
		return err
	}
	return fmt.Errorf("%w at %s for %s", ErrOccupied, s.path, cred)
}

func stringAt(m map[string]any, path ...string) string {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return s
}
