package credentials

import (
	"os"
	"path/filepath"
)

// Environment variables that override default locations.
const (
	EnvCredentials = "MOLTBOOK_CREDENTIALS"
	EnvJournal     = "MOLTBOOK_JOURNAL"
)

// Dir returns the directory holding moltbook's local state.
// Defaults to ~/.config/moltbook, falls back to ./.moltbook if home dir unavailable.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".moltbook")
	}
	return filepath.Join(home, ".config", "moltbook")
}

// DefaultPath returns the credential file location.
// Priority: MOLTBOOK_CREDENTIALS env > Dir()/credentials.json
func DefaultPath() string {
	if p := os.Getenv(EnvCredentials); p != "" {
		return p
	}
	return filepath.Join(Dir(), "credentials.json")
}

// JournalPath returns the call journal location, or "" when the journal is
// turned off with MOLTBOOK_JOURNAL=off.
func JournalPath() string {
	switch p := os.Getenv(EnvJournal); p {
	case "off", "0", "false", "none":
		return ""
	case "":
		return filepath.Join(Dir(), "journal.db")
	default:
		return p
	}
}

// EnvFilePath returns the user-level .env file read at startup.
func EnvFilePath() string {
	return filepath.Join(Dir(), ".env")
}
