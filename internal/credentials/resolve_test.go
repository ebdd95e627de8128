package credentials_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/moltbook/internal/credentials"
)

func env(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func prompt(key string, calls *int) credentials.PromptFunc {
	return func(context.Context) (string, error) {
		*calls++
		return key, nil
	}
}

func TestResolve_FilePreferred(t *testing.T) {
	s := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, s.Save(credentials.Credential{APIKey: "moltbook_file", AgentName: "claw"}))

	calls := 0
	cred, src, err := credentials.Resolve(context.Background(), credentials.Sources{
		Store:  s,
		Getenv: env(map[string]string{"MOLTBOOK_API_KEY": "moltbook_env"}),
		Prompt: prompt("moltbook_prompt", &calls),
	})
	require.NoError(t, err)
	assert.Equal(t, credentials.SourceFile, src)
	assert.Equal(t, "moltbook_file", cred.APIKey)
	assert.Equal(t, "claw", cred.AgentName)
	assert.Zero(t, calls)
}

func TestResolve_EnvWhenNoFile(t *testing.T) {
	calls := 0
	cred, src, err := credentials.Resolve(context.Background(), credentials.Sources{
		Store:  credentials.NewStore(filepath.Join(t.TempDir(), "none.json")),
		Getenv: env(map[string]string{"MOLTBOOK_API_KEY": " 'moltbook_env' "}),
		Prompt: prompt("moltbook_prompt", &calls),
	})
	require.NoError(t, err)
	assert.Equal(t, credentials.SourceEnv, src)
	assert.Equal(t, "moltbook_env", cred.APIKey)
	assert.Zero(t, calls)
}

func TestResolve_CorruptFileFallsThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	cred, src, err := credentials.Resolve(context.Background(), credentials.Sources{
		Store:  credentials.NewStore(path),
		Getenv: env(map[string]string{"MOLTBOOK_API_KEY": "moltbook_env"}),
	})
	require.NoError(t, err)
	assert.Equal(t, credentials.SourceEnv, src)
	assert.Equal(t, "moltbook_env", cred.APIKey)
}

func TestResolve_PromptLast(t *testing.T) {
	calls := 0
	cred, src, err := credentials.Resolve(context.Background(), credentials.Sources{
		Getenv: env(map[string]string{"MOLTBOOK_API_KEY": "\u200b \ufeff"}),
		Prompt: prompt("\u201cmoltbook_typed\u201d", &calls),
	})
	require.NoError(t, err)
	assert.Equal(t, credentials.SourcePrompt, src)
	assert.Equal(t, "moltbook_typed", cred.APIKey)
	assert.Equal(t, 1, calls)
}

func TestResolve_NothingAvailable(t *testing.T) {
	calls := 0
	_, src, err := credentials.Resolve(context.Background(), credentials.Sources{
		Getenv: env(nil),
		Prompt: prompt("   ", &calls),
	})
	assert.ErrorIs(t, err, credentials.ErrNoCredential)
	assert.Equal(t, credentials.SourceNone, src)
}

func TestResolve_PromptError(t *testing.T) {
	boom := errors.New("interrupted")
	_, _, err := credentials.Resolve(context.Background(), credentials.Sources{
		Getenv: env(nil),
		Prompt: func(context.Context) (string, error) { return "", boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestDefaultPath_EnvOverride(t *testing.T) {
	t.Setenv("MOLTBOOK_CREDENTIALS", "/tmp/custom/creds.json")
	assert.Equal(t, "/tmp/custom/creds.json", credentials.DefaultPath())
}

func TestDefaultPath_UnderConfigDir(t *testing.T) {
	t.Setenv("MOLTBOOK_CREDENTIALS", "")
	got := credentials.DefaultPath()
	assert.Equal(t, "credentials.json", filepath.Base(got))
	assert.Equal(t, credentials.Dir(), filepath.Dir(got))
}

func TestJournalPath(t *testing.T) {
	t.Setenv("MOLTBOOK_JOURNAL", "off")
	assert.Empty(t, credentials.JournalPath())

	t.Setenv("MOLTBOOK_JOURNAL", "/tmp/j.db")
	assert.Equal(t, "/tmp/j.db", credentials.JournalPath())

	t.Setenv("MOLTBOOK_JOURNAL", "")
	assert.Equal(t, filepath.Join(credentials.Dir(), "journal.db"), credentials.JournalPath())
}
