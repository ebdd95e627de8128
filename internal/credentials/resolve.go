package credentials

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hyperengineering/moltbook"
)

// Source says where a resolved credential came from.
type Source int

const (
	SourceNone Source = iota
	SourceFile
	SourceEnv
	SourcePrompt
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "saved credentials"
	case SourceEnv:
		return moltbook.EnvAPIKey
	case SourcePrompt:
		return "prompt"
	default:
		return "none"
	}
}

// PromptFunc asks the user for a key without echoing it.
type PromptFunc func(ctx context.Context) (string, error)

// Sources lists where Resolve may look for a key.
type Sources struct {
	// Store is the saved credential file. Nil skips it.
	Store *Store
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Prompt is asked last. Nil skips it.
	Prompt PromptFunc
	// Log receives the reason a saved file was ignored.
	Log *moltbook.DebugLogger
}

// ErrNoCredential is returned when every source came up empty.
var ErrNoCredential = errors.New("credentials: no API key available")

// Resolve finds an API key.
// Priority: saved file > MOLTBOOK_API_KEY env > prompt.
// Every candidate is sanitized; a candidate that is empty afterwards counts
// as absent. A corrupt saved file is treated as no saved file.
func Resolve(ctx context.Context, src Sources) (Credential, Source, error) {
	// 1. Saved credential file
	if src.Store != nil {
		cred, err := src.Store.Load()
		switch {
		case err == nil:
			return cred, SourceFile, nil
		case errors.Is(err, ErrCorrupt):
			src.Log.Log("ignoring saved credential", slog.String("path", src.Store.Path()), slog.String("error", err.Error()))
		}
	}

	// 2. Environment variable
	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if key := moltbook.SanitizeKey(getenv(moltbook.EnvAPIKey)); key != "" {
		return Credential{APIKey: key}, SourceEnv, nil
	}

	// 3. Hidden prompt
	if src.Prompt != nil {
		raw, err := src.Prompt(ctx)
		if err != nil {
			return Credential{}, SourceNone, err
		}
		if key := moltbook.SanitizeKey(raw); key != "" {
			return Credential{APIKey: key}, SourcePrompt, nil
		}
	}

	return Credential{}, SourceNone, ErrNoCredential
}
