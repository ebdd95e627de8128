package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook/internal/commands"
	"github.com/hyperengineering/moltbook/internal/credentials"
)

var (
	runList   bool
	runJQExpr string
)

var runCmd = &cobra.Command{
	Use:   "run <command> [key=value...]",
	Short: "Run one menu command without the menu",
	Long: `Run a single menu command by name or menu number, taking its
parameters as key=value arguments. Blank parameters take the menu's
defaults.

Example:
  moltbook run me
  moltbook run 5 sort=new limit=10
  moltbook run create_post title="Hello" content="First post"
  moltbook run search q="agent memory" --jq '.results[].title'
  moltbook run --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if runList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runList, "list", false, "List commands and their parameters")
	runCmd.Flags().StringVar(&runJQExpr, "jq", "", "Filter the response with a jq expression")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	reg := commands.Default()
	if runList {
		fmt.Fprintln(cmd.OutOrStdout(), renderCommandList(reg))
		return nil
	}

	c, err := findCommand(reg, args[0])
	if err != nil {
		return err
	}
	pairs, err := parsePairs(args[1:])
	if err != nil {
		return err
	}
	filter, err := compileOptionalJQ(runJQExpr)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opts := appOptions{key: keyRequired, prompt: stdinIsTerminal(), statusErr: true}
	if c.Public {
		opts = appOptions{key: keyNone, statusErr: true}
	}
	a, err := newApp(ctx, cmd, newConsole(cmd.InOrStdin(), cmd.ErrOrStderr()), opts)
	if err != nil {
		return interruptOr(ctx, err)
	}
	defer a.Close()

	issuesKey := c.Name == commands.NameRegister
	if issuesKey {
		if err := checkUnattendedRegistration(a.store); err != nil {
			return err
		}
	}

	res, err := c.Execute(ctx, a.client, pairs)
	if err != nil {
		printCallError(cmd.ErrOrStderr(), err)
		return reportedError{err}
	}
	// Saved before printing so a failing filter cannot lose the key.
	if issuesKey {
		if cred, ok := credentials.FromRegistration(res.Fields); ok {
			if err := saveRegistered(cmd, a.store, cred); err != nil {
				return err
			}
		}
	}
	return printCallResult(cmd, res, filter)
}

// findCommand accepts a command name or its menu number.
func findCommand(reg *commands.Registry, ref string) (commands.Command, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		if c, ok := reg.Lookup(id); ok {
			return c, nil
		}
		return commands.Command{}, fmt.Errorf("no command with menu number %d (1-%d)", id, reg.MaxID())
	}
	if c, ok := reg.ByName(ref); ok {
		return c, nil
	}
	return commands.Command{}, fmt.Errorf("unknown command %q: see 'moltbook run --list'", ref)
}

// renderCommandList shows every command with its parameters.
func renderCommandList(reg *commands.Registry) string {
	var rows [][]string
	for _, c := range reg.All() {
		rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Label(), paramSummary(c.Params)})
	}
	return renderTable([]string{"#", "NAME", "DESCRIPTION", "PARAMETERS"}, rows)
}

func paramSummary(params []commands.Param) string {
	var s string
	for i, p := range params {
		if i > 0 {
			s += " "
		}
		switch {
		case p.Default != "":
			s += fmt.Sprintf("[%s=%s]", p.Name, p.Default)
		case !p.Required() || p.When != nil:
			s += fmt.Sprintf("[%s]", p.Name)
		default:
			s += p.Name
		}
	}
	return s
}
