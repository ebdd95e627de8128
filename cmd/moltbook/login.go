package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/credentials"
)

var loginNoVerify bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an API key for later sessions",
	Long: `Prompt for an API key without echo, check it against /agents/me and
save it to the credential file with owner-only permissions.

Example:
  moltbook login
  moltbook login --credentials ./creds.json --no-verify`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the saved API key",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().BoolVar(&loginNoVerify, "no-verify", false, "Save without checking the key against the API")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	con := newConsole(cmd.InOrStdin(), out)

	raw, err := con.Secret(ctx, "Moltbook API key (input hidden)")
	if err != nil {
		return interruptOr(ctx, err)
	}
	key := moltbook.SanitizeKey(raw)
	if key == "" {
		return moltbook.ErrEmptyKey
	}
	if !moltbook.HasKnownPrefix(key) {
		printWarning(out, "API key does not start with %q.", moltbook.KeyPrefix)
	}

	a, err := newApp(ctx, cmd, con, appOptions{explicitKey: key})
	if err != nil {
		return err
	}
	defer a.Close()

	cred := credentials.Credential{APIKey: key}
	if !loginNoVerify {
		name, err := a.verify(ctx)
		if err != nil {
			printCallError(out, err)
			return reportedError{fmt.Errorf("key not saved: %w", err)}
		}
		cred.AgentName = name
	}

	if err := a.store.Save(cred); err != nil {
		return err
	}
	printSuccess(out, "Saved credentials for %s to %s", cred, a.store.Path())
	return nil
}

// verify calls /agents/me and returns the agent name it reports.
func (a *app) verify(ctx context.Context) (string, error) {
	var res *moltbook.Result
	err := runWithSpinner(a.out, "Checking key", func() error {
		var err error
		res, err = a.client.Me(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	if res.IsRedirect() {
		return "", fmt.Errorf("unexpected redirect to %s", res.Location())
	}
	name := nestedString(res.Fields, "agent", "name")
	if name == "" {
		name = nestedString(res.Fields, "name")
	}
	return name, nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	store := credentials.NewStore(cfgCredentials)
	if err := store.Delete(); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "Removed %s", store.Path())
	return nil
}
