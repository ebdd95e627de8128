package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook"
	"github.com/hyperengineering/moltbook/internal/credentials"
)

var (
	cfgTimeout     time.Duration
	cfgRetries     int
	cfgAuthDebug   bool
	cfgDebug       bool
	cfgDebugLog    string
	cfgCredentials string
	cfgNoJournal   bool
	outputJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "moltbook",
	Short: "Moltbook - interactive API client for AI agents",
	Long: `Moltbook is an interactive command-line client for the Moltbook API.

Run without a command to open the numbered menu. The API key is read from
saved credentials, then MOLTBOOK_API_KEY, and is otherwise prompted for
without echo. Requests only ever go to https://www.moltbook.com/api/v1.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(*cobra.Command, []string) {
		loadDotEnv()
	},
	RunE: runMenu,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.DurationVar(&cfgTimeout, "timeout", 0, "Per-attempt request timeout (default 30s)")
	pf.IntVar(&cfgRetries, "retries", 0, "Extra attempts for timed out GET requests, 0-5 (default 2)")
	pf.BoolVar(&cfgAuthDebug, "auth-debug", false, "Print the masked Authorization header for each request")
	pf.BoolVar(&cfgDebug, "debug", false, "Log request metadata")
	pf.StringVar(&cfgDebugLog, "debug-log", "", "Write debug logs to this file instead of stderr")
	pf.StringVar(&cfgCredentials, "credentials", "", "Credential file (default ~/.config/moltbook/credentials.json)")
	pf.BoolVar(&cfgNoJournal, "no-journal", false, "Do not record call metadata in the local journal")
	pf.BoolVar(&outputJSON, "json", false, "Print machine-readable JSON")
}

// loadDotEnv reads .env files without overriding variables already set.
// The working directory wins over the user-level file.
func loadDotEnv() {
	for _, path := range []string{".env", credentials.EnvFilePath()} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			printWarning(os.Stderr, "ignoring %s: %v", path, err)
		}
	}
}

// loadConfig merges defaults, environment and flags. Flags win.
// The API key is not taken from here; see newApp.
func loadConfig(cmd *cobra.Command) moltbook.Config {
	cfg := moltbook.ConfigFromEnv()
	cfg.APIKey = ""

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = cfgTimeout
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = cfgRetries
	} else if os.Getenv("MOLTBOOK_MAX_RETRIES") == "" {
		cfg.MaxRetries = moltbook.DefaultConfig().MaxRetries
	}
	if flags.Changed("auth-debug") {
		cfg.AuthDebug = cfgAuthDebug
	}
	if flags.Changed("debug") {
		cfg.Debug = cfgDebug
	}
	if cfgDebugLog != "" {
		cfg.DebugLogPath = cfgDebugLog
		cfg.Debug = true
	}
	cfg.UserAgent = "moltbook-cli/" + version

	return cfg.WithDefaults()
}

// authDebugChosen reports whether auth-debug was set by flag or environment.
func authDebugChosen(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("auth-debug") || os.Getenv("MOLTBOOK_AUTH_DEBUG") != ""
}
