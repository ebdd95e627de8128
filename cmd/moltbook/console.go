package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/hyperengineering/moltbook/internal/commands"
)

// console reads prompted input. Every read observes ctx so an interrupt
// unblocks a pending prompt.
type console struct {
	in       *bufio.Reader
	out      io.Writer
	fd       int
	terminal bool
}

type lineResult struct {
	text string
	err  error
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		c.fd = int(f.Fd())
		c.terminal = term.IsTerminal(c.fd)
	}
	return c
}

// readLine reads one line without the trailing newline.
func (c *console) readLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		s, err := c.in.ReadString('\n')
		ch <- lineResult{s, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		text := strings.TrimRight(r.text, "\r\n")
		if r.err != nil && !(errors.Is(r.err, io.EOF) && text != "") {
			return "", r.err
		}
		return text, nil
	}
}

// Ask prompts for a line. A blank answer returns def.
func (c *console) Ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s %s: ", label, styled(mutedStyle, "["+def+"]"))
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	s, err := c.readLine(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return strings.TrimSpace(s), nil
}

// AskInt prompts until a whole number within [lo, hi] is entered.
// hasDef selects whether a blank answer means def.
func (c *console) AskInt(ctx context.Context, label string, def int, hasDef bool, lo, hi int) (int, error) {
	defText := ""
	if hasDef {
		defText = strconv.Itoa(def)
	}
	for {
		s, err := c.Ask(ctx, label, defText)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			printError(c.out, "Please enter a whole number.")
			continue
		}
		if n < lo || n > hi {
			printError(c.out, "Please enter a number between %d and %d.", lo, hi)
			continue
		}
		return n, nil
	}
}

// AskYesNo prompts for a yes/no answer.
func (c *console) AskYesNo(ctx context.Context, label string, defYes bool) (bool, error) {
	hint := "y/N"
	if defYes {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(c.out, "%s %s: ", label, styled(mutedStyle, "["+hint+"]"))
		s, err := c.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "":
			return defYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		printError(c.out, "Please answer y or n.")
	}
}

// AskParam prompts for one command parameter until it parses. It returns
// the raw answer; "" means blank.
func (c *console) AskParam(ctx context.Context, p commands.Param) (any, error) {
	for {
		var raw any
		switch p.Kind {
		case commands.KindBool:
			b, err := c.AskYesNo(ctx, p.Prompt, p.Default != "" && isYes(p.Default))
			if err != nil {
				return nil, err
			}
			raw = b
		default:
			s, err := c.Ask(ctx, p.Prompt, p.Default)
			if err != nil {
				return nil, err
			}
			if s == "" {
				if p.Required() {
					printError(c.out, "%s is required.", p.Prompt)
					continue
				}
				return "", nil
			}
			raw = s
		}
		if _, err := p.Parse(raw); err != nil {
			printError(c.out, "%v", err)
			continue
		}
		return raw, nil
	}
}

// Secret reads a line with echo disabled when stdin is a terminal. On
// interrupt the terminal state is restored before returning.
func (c *console) Secret(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	if !c.terminal {
		return c.readLine(ctx)
	}

	state, err := term.GetState(c.fd)
	if err != nil {
		return "", fmt.Errorf("read terminal state: %w", err)
	}

	ch := make(chan lineResult, 1)
	go func() {
		b, err := term.ReadPassword(c.fd)
		ch <- lineResult{string(b), err}
	}()

	select {
	case <-ctx.Done():
		_ = term.Restore(c.fd, state)
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case r := <-ch:
		fmt.Fprintln(c.out)
		return r.text, r.err
	}
}

// Pause waits for Enter.
func (c *console) Pause(ctx context.Context) error {
	fmt.Fprint(c.out, styled(mutedStyle, "\nPress Enter to continue..."))
	_, err := c.readLine(ctx)
	return err
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "on":
		return true
	}
	return false
}
