package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/moltbook/internal/commands"
)

func newTestConsole(t *testing.T, input string) (*console, *bytes.Buffer) {
	t.Helper()
	cleanup := setMockTTY(false)
	t.Cleanup(cleanup)
	var out bytes.Buffer
	return newConsole(strings.NewReader(input), &out), &out
}

func TestConsole_Ask_Default(t *testing.T) {
	con, out := newTestConsole(t, "\n  typed  \n")
	ctx := context.Background()

	got, err := con.Ask(ctx, "Sort", "hot")
	if err != nil {
		t.Fatalf("Ask() returned error: %v", err)
	}
	if got != "hot" {
		t.Errorf("blank answer = %q, want default", got)
	}
	if !strings.Contains(out.String(), "Sort [hot]: ") {
		t.Errorf("prompt = %q, want default shown", out.String())
	}

	got, err = con.Ask(ctx, "Sort", "hot")
	if err != nil {
		t.Fatalf("Ask() returned error: %v", err)
	}
	if got != "typed" {
		t.Errorf("Ask() = %q, want trimmed input", got)
	}
}

func TestConsole_Ask_LastLineWithoutNewline(t *testing.T) {
	con, _ := newTestConsole(t, "final")

	got, err := con.Ask(context.Background(), "Name", "")
	if err != nil {
		t.Fatalf("Ask() returned error: %v", err)
	}
	if got != "final" {
		t.Errorf("Ask() = %q, want final", got)
	}

	if _, err := con.Ask(context.Background(), "Name", ""); !errors.Is(err, io.EOF) {
		t.Errorf("Ask() after input ends = %v, want io.EOF", err)
	}
}

func TestConsole_AskInt_Reprompts(t *testing.T) {
	con, out := newTestConsole(t, "x\n51\n0\n7\n")

	got, err := con.AskInt(context.Background(), "Limit", 25, true, 1, 50)
	if err != nil {
		t.Fatalf("AskInt() returned error: %v", err)
	}
	if got != 7 {
		t.Errorf("AskInt() = %d, want 7", got)
	}
	if n := strings.Count(out.String(), iconError); n != 3 {
		t.Errorf("got %d error lines, want 3:\n%s", n, out.String())
	}
}

func TestConsole_AskInt_BlankUsesDefault(t *testing.T) {
	con, _ := newTestConsole(t, "\n")

	got, err := con.AskInt(context.Background(), "Limit", 25, true, 1, 50)
	if err != nil {
		t.Fatalf("AskInt() returned error: %v", err)
	}
	if got != 25 {
		t.Errorf("AskInt() = %d, want default 25", got)
	}
}

func TestConsole_AskYesNo(t *testing.T) {
	tests := []struct {
		input  string
		defYes bool
		want   bool
	}{
		{"\n", true, true},
		{"\n", false, false},
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"maybe\nno\n", true, false},
	}

	for _, tt := range tests {
		con, _ := newTestConsole(t, tt.input)
		got, err := con.AskYesNo(context.Background(), "Continue?", tt.defYes)
		if err != nil {
			t.Fatalf("AskYesNo(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("AskYesNo(%q, default %v) = %v, want %v", tt.input, tt.defYes, got, tt.want)
		}
	}
}

func TestConsole_AskParam(t *testing.T) {
	required := commands.Param{Name: "post_id", Prompt: "POST_ID", Kind: commands.KindString}
	optional := commands.Param{Name: "parent_id", Prompt: "Parent", Kind: commands.KindString, Optional: true}
	limit := commands.Param{Name: "limit", Prompt: "Limit", Kind: commands.KindInt, Default: "25", Min: 1, Max: 50}
	link := commands.Param{Name: "link", Prompt: "Link post?", Kind: commands.KindBool, Default: "no"}

	t.Run("required reprompts on blank", func(t *testing.T) {
		con, out := newTestConsole(t, "\nabc123\n")
		got, err := con.AskParam(context.Background(), required)
		if err != nil {
			t.Fatalf("AskParam() returned error: %v", err)
		}
		if got != "abc123" {
			t.Errorf("AskParam() = %v, want abc123", got)
		}
		if !strings.Contains(out.String(), "POST_ID is required.") {
			t.Error("blank required value should be rejected")
		}
	})

	t.Run("optional blank", func(t *testing.T) {
		con, _ := newTestConsole(t, "\n")
		got, err := con.AskParam(context.Background(), optional)
		if err != nil {
			t.Fatalf("AskParam() returned error: %v", err)
		}
		if got != "" {
			t.Errorf("AskParam() = %v, want blank", got)
		}
	})

	t.Run("int out of range reprompts", func(t *testing.T) {
		con, _ := newTestConsole(t, "500\n10\n")
		got, err := con.AskParam(context.Background(), limit)
		if err != nil {
			t.Fatalf("AskParam() returned error: %v", err)
		}
		if got != "10" {
			t.Errorf("AskParam() = %v, want raw 10", got)
		}
	})

	t.Run("bool default", func(t *testing.T) {
		con, _ := newTestConsole(t, "\n")
		got, err := con.AskParam(context.Background(), link)
		if err != nil {
			t.Fatalf("AskParam() returned error: %v", err)
		}
		if got != false {
			t.Errorf("AskParam() = %v, want false", got)
		}
	})
}

func TestConsole_CanceledContextUnblocks(t *testing.T) {
	cleanup := setMockTTY(false)
	defer cleanup()

	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	con := newConsole(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := con.Ask(ctx, "Select", "")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Ask() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ask() did not return after cancel")
	}
}

func TestConsole_Secret_NonTerminalReadsLine(t *testing.T) {
	con, out := newTestConsole(t, "moltbook_sk_value\n")

	got, err := con.Secret(context.Background(), "API key")
	if err != nil {
		t.Fatalf("Secret() returned error: %v", err)
	}
	if got != "moltbook_sk_value" {
		t.Errorf("Secret() = %q", got)
	}
	if strings.Contains(out.String(), "moltbook_sk_value") {
		t.Error("Secret() must not echo the value")
	}
}
