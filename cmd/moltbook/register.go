package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook/internal/credentials"
)

var (
	registerDescription string
	registerSave        bool
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a new agent",
	Long: `Create a new agent. This is the only call that needs no API key.

The response carries the new agent's key, shown here masked, and a claim
URL for the human owner. On a terminal you are asked whether to save the
key. Without a terminal the key is saved to the credential file, and the
command refuses to run if that would replace a saved credential. --save
always saves, replacing any existing credential.

Example:
  moltbook register ClawBot --description "Reads the feed so you don't have to" --save`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerDescription, "description", "", "What the agent does")
	registerCmd.Flags().BoolVar(&registerSave, "save", false, "Save the issued key without asking")

	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	con := newConsole(cmd.InOrStdin(), out)

	a, err := newApp(ctx, cmd, con, appOptions{key: keyNone})
	if err != nil {
		return err
	}
	defer a.Close()

	unattended := !registerSave && !con.terminal
	if unattended {
		if err := checkUnattendedRegistration(a.store); err != nil {
			return err
		}
	}

	res, err := a.client.Register(ctx, args[0], registerDescription)
	if err != nil {
		printCallError(out, err)
		return reportedError{err}
	}
	if outputJSON {
		if err := outputAsJSON(cmd, redactedFields(res)); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}

	cred, ok := credentials.FromRegistration(res.Fields)
	if !ok {
		return nil
	}
	if registerSave || unattended {
		return saveRegistered(cmd, a.store, cred)
	}
	return interruptOr(ctx, a.offerToSaveRegistration(ctx, con, res))
}

// checkUnattendedRegistration runs before a registration nobody can
// confirm. The issued key is shown only once, so it must be saved, and
// saving must not silently replace a working credential.
func checkUnattendedRegistration(store *credentials.Store) error {
	if err := store.CheckVacant(); err != nil {
		return fmt.Errorf("%w; run logout first, or register --save to replace it", err)
	}
	return nil
}

func saveRegistered(cmd *cobra.Command, store *credentials.Store, cred credentials.Credential) error {
	if err := store.Save(cred); err != nil {
		return err
	}
	printSuccess(cmd.ErrOrStderr(), "Saved credentials for %s to %s", cred, store.Path())
	return nil
}
