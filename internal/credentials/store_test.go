package credentials_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/credentials"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	s := credentials.NewStore(path)

	err := s.Save(credentials.Credential{APIKey: "  \"moltbook_abc123def456\"\n", AgentName: "claw"})
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "moltbook_abc123def456", got.APIKey)
	assert.Equal(t, "claw", got.AgentName)
}

func TestStore_SaveWritesOwnerOnlyFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	dir := filepath.Join(t.TempDir(), "cfg")
	path := filepath.Join(dir, "credentials.json")
	require.NoError(t, credentials.NewStore(path).Save(credentials.Credential{APIKey: "moltbook_secret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := credentials.NewStore(filepath.Join(dir, "credentials.json"))
	require.NoError(t, s.Save(credentials.Credential{APIKey: "moltbook_one"}))
	require.NoError(t, s.Save(credentials.Credential{APIKey: "moltbook_two"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "credentials.json", entries[0].Name())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "moltbook_two", got.APIKey)
}

func TestStore_SaveRejectsEmptyKey(t *testing.T) {
	s := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	err := s.Save(credentials.Credential{APIKey: " \u200b "})
	assert.ErrorIs(t, err, moltbook.ErrEmptyKey)
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_LoadMissing(t *testing.T) {
	s := credentials.NewStore(filepath.Join(t.TempDir(), "missing.json"))
	_, err := s.Load()
	assert.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "api_key=moltbook_x"},
		{"empty key", `{"api_key": "  "}`},
		{"truncated", `{"api_key": "moltbook_`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := credentials.NewStore(path).Load()
			assert.ErrorIs(t, err, credentials.ErrCorrupt)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	s := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, s.Save(credentials.Credential{APIKey: "moltbook_gone"}))
	require.NoError(t, s.Delete())
	_, err := s.Load()
	assert.ErrorIs(t, err, credentials.ErrNotFound)

	// Deleting again is fine.
	assert.NoError(t, s.Delete())
}

func TestCredential_StringMasksKey(t *testing.T) {
	c := credentials.Credential{APIKey: "moltbook_abcdefghijklmnop", AgentName: "claw"}
	s := c.String()
	assert.NotContains(t, s, c.APIKey)
	assert.True(t, strings.HasPrefix(s, "claw ("))
	assert.Contains(t, s, moltbook.MaskKey(c.APIKey))
}
