package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/commands"
	"github.com/hyperengineering/moltbook/internal/credentials"
)

// errInterrupted ends the program with exit code 130.
var errInterrupted = errors.New("interrupted")

func runMenu(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	con := newConsole(cmd.InOrStdin(), out)

	fmt.Fprintln(out, renderBannerWithTagline())
	printMuted(out, "Base URL: %s", moltbook.DefaultBaseURL)
	fmt.Fprintln(out)

	a, err := newApp(ctx, cmd, con, appOptions{key: keyRequired, prompt: true})
	if err != nil {
		return endOfInput(ctx, out, err)
	}
	defer a.Close()

	if !authDebugChosen(cmd) {
		on, err := con.AskYesNo(ctx, "Enable auth debug (masked token display)?", true)
		if err != nil {
			return endOfInput(ctx, out, err)
		}
		a.client.SetAuthDebug(on)
	}

	return menuLoop(ctx, a, con, commands.Default())
}

func menuLoop(ctx context.Context, a *app, con *console, reg *commands.Registry) error {
	out := a.out
	for {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderMenu(reg))
		choice, err := con.AskInt(ctx, "\nSelect", 0, false, 0, reg.MaxID())
		if err != nil {
			return endOfInput(ctx, out, err)
		}
		if choice == 0 {
			fmt.Fprintln(out, "Exiting.")
			return nil
		}

		c, _ := reg.Lookup(choice)
		if err := a.runInteractive(ctx, con, c); err != nil {
			if ctx.Err() != nil || moltbook.IsKind(err, moltbook.KindCanceled) {
				return errInterrupted
			}
			if errors.Is(err, io.EOF) {
				return endOfInput(ctx, out, err)
			}
			printCallError(out, err)
		}

		if err := con.Pause(ctx); err != nil {
			return endOfInput(ctx, out, err)
		}
	}
}

// renderMenu lists every command under its menu number.
func renderMenu(reg *commands.Registry) string {
	var b strings.Builder
	b.WriteString(styled(headerStyle, "Main Menu"))
	b.WriteString("\n")
	for _, c := range reg.All() {
		fmt.Fprintf(&b, "  %s %s\n", styled(labelStyle, fmt.Sprintf("%2d)", c.ID)), c.Label())
	}
	fmt.Fprintf(&b, "  %s Exit", styled(labelStyle, " 0)"))
	return b.String()
}

// runInteractive collects parameters for c, runs it and prints the outcome.
func (a *app) runInteractive(ctx context.Context, con *console, c commands.Command) error {
	raw := map[string]any{}
	parsed := commands.Args{}
	for _, p := range c.Params {
		if p.When != nil && !p.When(parsed) {
			continue
		}
		v, err := con.AskParam(ctx, p)
		if err != nil {
			return err
		}
		raw[p.Name] = v
		if pv, err := p.Parse(v); err == nil && v != "" {
			parsed[p.Name] = pv
		}
	}

	var res *moltbook.Result
	err := runWithSpinner(a.out, c.Label(), func() error {
		var err error
		res, err = c.Execute(ctx, a.client, raw)
		return err
	})
	if err != nil {
		return err
	}

	printResult(a.out, res)
	if c.Name == commands.NameRegister {
		return a.offerToSaveRegistration(ctx, con, res)
	}
	return nil
}

// offerToSaveRegistration saves the key issued by a registration when the
// user agrees.
func (a *app) offerToSaveRegistration(ctx context.Context, con *console, res *moltbook.Result) error {
	cred, ok := credentials.FromRegistration(res.Fields)
	if !ok {
		return nil
	}
	if claim := nestedString(res.Fields, "agent", "claim_url"); claim != "" {
		printInfo(a.out, "Claim URL: %s", claim)
	}
	save, err := con.AskYesNo(ctx, fmt.Sprintf("Save the new key to %s?", a.store.Path()), true)
	if err != nil {
		return err
	}
	if !save {
		printWarning(a.out, "The key is shown only once, masked here. Store it safely.")
		return nil
	}
	if err := a.store.Save(cred); err != nil {
		return err
	}
	printSuccess(a.out, "Saved credentials for %s", cred)
	return nil
}

func nestedString(m map[string]any, path ...string) string {
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

// endOfInput turns EOF into a normal exit and cancellation into an interrupt.
func endOfInput(ctx context.Context, out io.Writer, err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(out, "\nExiting.")
		return nil
	}
	return interruptOr(ctx, err)
}

func interruptOr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return errInterrupted
	}
	return err
}
