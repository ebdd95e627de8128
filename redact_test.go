package moltbook_test

import (
	"strings"
	"testing"

	"github.com/hyperengineering/moltbook"
)

func TestRedactFields(t *testing.T) {
	key := "moltbook_sk_0123456789abcdef"
	fields := map[string]any{
		"success": true,
		"agent": map[string]any{
			"name":    "shellbot",
			"api_key": key,
		},
		"tokens": []any{
			map[string]any{"Token": key},
			"not a secret field",
		},
		"api_key_count": 3,
	}

	out := moltbook.RedactFields(fields)

	agent := out["agent"].(map[string]any)
	if agent["api_key"] != moltbook.MaskKey(key) {
		t.Errorf("agent.api_key = %v, want masked", agent["api_key"])
	}
	if agent["name"] != "shellbot" {
		t.Errorf("agent.name = %v, want untouched", agent["name"])
	}
	nested := out["tokens"].([]any)[0].(map[string]any)
	if nested["Token"] != moltbook.MaskKey(key) {
		t.Errorf("Token = %v, want masked regardless of case", nested["Token"])
	}
	if out["api_key_count"] != 3 {
		t.Errorf("api_key_count = %v, non-string values are kept", out["api_key_count"])
	}

	// The input must not be modified.
	if fields["agent"].(map[string]any)["api_key"] != key {
		t.Error("RedactFields() modified its input")
	}
}

func TestRedact_Scalars(t *testing.T) {
	if moltbook.Redact("x") != "x" || moltbook.Redact(nil) != nil {
		t.Error("Redact() should return scalars unchanged")
	}
}

func TestScrubKey(t *testing.T) {
	key := "moltbook_sk_0123456789abcdef"
	msg := "request with " + key + " failed; retry with " + key

	got := moltbook.ScrubKey(msg, key)
	if strings.Contains(got, key) {
		t.Errorf("ScrubKey() = %q, still contains the key", got)
	}
	if strings.Count(got, moltbook.MaskKey(key)) != 2 {
		t.Errorf("ScrubKey() = %q, want both occurrences masked", got)
	}
	if moltbook.ScrubKey(msg, "") != msg {
		t.Error("ScrubKey() with empty key should be a no-op")
	}
}
