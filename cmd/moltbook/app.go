package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/credentials"
	"github.com/hyperengineering/moltbook/internal/journal"
)

// activeKey is the key in use, kept only so error text can be scrubbed.
var activeKey string

// testTransport, when set by tests, replaces the HTTP transport.
var testTransport http.RoundTripper

type keyMode int

const (
	// keyRequired resolves a key and fails without one.
	keyRequired keyMode = iota
	// keyOptional resolves a key from file or environment but never prompts.
	keyOptional
	// keyNone builds an unauthenticated client.
	keyNone
)

type appOptions struct {
	key keyMode
	// prompt allows asking for the key on the console.
	prompt bool
	// explicitKey skips resolution and uses this key.
	explicitKey string
	// stderrOnly keeps stdout free, for protocols that own it.
	stderrOnly bool
	// statusErr sends status lines to stderr so stdout holds only the
	// response and auth-debug lines.
	statusErr bool
}

// app bundles what every command needs: a client, its logger, the optional
// journal and the credential store.
type app struct {
	client  *moltbook.Client
	debug   *moltbook.DebugLogger
	journal *journal.Journal
	store   *credentials.Store
	agent   string
	out     io.Writer
}

func newApp(ctx context.Context, cmd *cobra.Command, con *console, opts appOptions) (*app, error) {
	cfg := loadConfig(cmd)
	out := cmd.OutOrStdout()
	if opts.stderrOnly {
		out = cmd.ErrOrStderr()
	}
	status := out
	if opts.statusErr {
		status = cmd.ErrOrStderr()
	}

	debug, err := moltbook.NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		debug: debug,
		store: credentials.NewStore(cfgCredentials),
		out:   out,
	}

	switch {
	case opts.explicitKey != "":
		cfg.APIKey = moltbook.SanitizeKey(opts.explicitKey)
	case opts.key != keyNone:
		src := credentials.Sources{Store: a.store, Log: debug}
		if opts.prompt && opts.key == keyRequired {
			src.Prompt = func(ctx context.Context) (string, error) {
				printMuted(status, "Tip: set %s or run 'moltbook login' to avoid prompting.", moltbook.EnvAPIKey)
				return con.Secret(ctx, "Moltbook API key (input hidden)")
			}
		}
		cred, from, err := credentials.Resolve(ctx, src)
		switch {
		case err == nil:
			cfg.APIKey = cred.APIKey
			a.agent = cred.AgentName
			printMuted(status, "Using API key %s from %s", moltbook.MaskKey(cred.APIKey), from)
			if !moltbook.HasKnownPrefix(cred.APIKey) {
				printWarning(status, "API key does not start with %q; check that you pasted the right value.", moltbook.KeyPrefix)
			}
		case errors.Is(err, credentials.ErrNoCredential) && opts.key == keyOptional:
		case errors.Is(err, credentials.ErrNoCredential):
			_ = debug.Close()
			return nil, fmt.Errorf("no API key: run 'moltbook login', set %s, or use the interactive menu", moltbook.EnvAPIKey)
		default:
			_ = debug.Close()
			return nil, err
		}
	}

	clientOpts := []moltbook.Option{
		moltbook.WithDebugLogger(debug),
		moltbook.WithAuthDebugWriter(out),
	}
	if testTransport != nil {
		clientOpts = append(clientOpts, moltbook.WithTransport(testTransport))
	}
	if !cfgNoJournal {
		if path := credentials.JournalPath(); path != "" {
			j, err := journal.Open(path)
			if err != nil {
				debug.Log("journal disabled", "error", err.Error())
			} else {
				a.journal = j
				clientOpts = append(clientOpts, moltbook.WithRecorder(j))
			}
		}
	}

	client, err := moltbook.New(cfg, clientOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client
	activeKey = cfg.APIKey
	// The client holds the only other copy from here on.
	cfg.APIKey = ""

	return a, nil
}

// Close releases the journal and the debug log.
func (a *app) Close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	_ = a.debug.Close()
}

// stdinIsTerminal reports whether stdin is a terminal.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
