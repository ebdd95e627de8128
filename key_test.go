package moltbook_test

import (
	"strings"
	"testing"

	"github.com/hyperengineering/moltbook"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "moltbook_abc123", "moltbook_abc123"},
		{"surrounding whitespace", "  moltbook_abc123\n", "moltbook_abc123"},
		{"double quotes", `"moltbook_abc123"`, "moltbook_abc123"},
		{"single quotes", `'moltbook_abc123'`, "moltbook_abc123"},
		{"curly double quotes", "\u201cmoltbook_abc123\u201d", "moltbook_abc123"},
		{"curly single quotes", "\u2018moltbook_abc123\u2019", "moltbook_abc123"},
		{"quotes with inner spaces", `" moltbook_abc123 "`, "moltbook_abc123"},
		{"zero width space", "moltbook_\u200babc123", "moltbook_abc123"},
		{"byte order mark", "\ufeffmoltbook_abc123", "moltbook_abc123"},
		{"word joiner and zwnj", "molt\u2060book_\u200cabc\u200d123", "moltbook_abc123"},
		{"inner whitespace", "moltbook_ abc\t123", "moltbook_abc123"},
		{"mismatched quotes kept", `"moltbook_abc123'`, `"moltbook_abc123'`},
		{"only outer pair removed", `""moltbook_abc123""`, `"moltbook_abc123"`},
		{"lone quote", `"`, `"`},
		{"empty", "", ""},
		{"only invisible", " \u200b\ufeff ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moltbook.SanitizeKey(tt.raw)
			if got != tt.want {
				t.Errorf("SanitizeKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if tt.name != "only outer pair removed" {
				if again := moltbook.SanitizeKey(got); again != got {
					t.Errorf("SanitizeKey is not idempotent: %q -> %q -> %q", tt.raw, got, again)
				}
			}
		})
	}
}

func TestSanitizeKey_DoubleQuotedNeedsTwoPasses(t *testing.T) {
	once := moltbook.SanitizeKey(`""moltbook_abc123""`)
	if once != `"moltbook_abc123"` {
		t.Fatalf("first pass = %q, want one quote pair left", once)
	}
	if twice := moltbook.SanitizeKey(once); twice != "moltbook_abc123" {
		t.Errorf("second pass = %q, want moltbook_abc123", twice)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "<empty>"},
		{"a", "a…a"},
		{"abcdef", "ab…ef"},
		{"moltbook_sk_0123456789abcdef", "moltbook…cdef"},
	}

	for _, tt := range tests {
		if got := moltbook.MaskKey(tt.key); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestMaskKey_NeverRevealsMiddle(t *testing.T) {
	key := "moltbook_sk_SECRETSECRETSECRET_tail"
	masked := moltbook.MaskKey(key)
	if strings.Contains(masked, "SECRET") {
		t.Errorf("MaskKey() = %q, reveals the middle of the key", masked)
	}
	if len(masked) >= len(key) {
		t.Errorf("MaskKey() = %q, not shorter than the key", masked)
	}
}

func TestHasKnownPrefix(t *testing.T) {
	if !moltbook.HasKnownPrefix("moltbook_sk_x") {
		t.Error("HasKnownPrefix() = false for a moltbook_ key")
	}
	for _, key := range []string{"", "sk_live_x", "Moltbook_x", " moltbook_x"} {
		if moltbook.HasKnownPrefix(key) {
			t.Errorf("HasKnownPrefix(%q) = true, want false", key)
		}
	}
}
