package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook/internal/credentials"
)

// Build-time variables (set via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// clientInfo is the effective client setup. The key itself never appears.
type clientInfo struct {
	BaseURL     string `json:"base_url"`
	UserAgent   string `json:"user_agent"`
	Timeout     string `json:"timeout"`
	MaxRetries  int    `json:"max_retries"`
	Credentials string `json:"credentials"`
	SavedAgent  string `json:"saved_agent,omitempty"`
}

type versionReport struct {
	Build  buildInfo  `json:"build"`
	Client clientInfo `json:"client"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and client information",
	Long: `Display the build, the API root requests go to, the user agent sent,
and which credential file is in use. A saved key is shown masked.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig(cmd)
	store := credentials.NewStore(cfgCredentials)

	report := versionReport{
		Build: buildInfo{
			Version:  version,
			Commit:   commit,
			Date:     date,
			Go:       runtime.Version(),
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		},
		Client: clientInfo{
			BaseURL:     cfg.BaseURL,
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.Timeout.String(),
			MaxRetries:  cfg.MaxRetries,
			Credentials: store.Path(),
		},
	}
	if cred, err := store.Load(); err == nil {
		report.Client.SavedAgent = cred.String()
	}

	if outputJSON {
		return outputAsJSON(cmd, report)
	}

	b, c := report.Build, report.Client
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "moltbook %s (%s, built %s, %s %s)\n", b.Version, b.Commit, b.Date, b.Go, b.Platform)
	fmt.Fprintf(out, "  api:         %s\n", c.BaseURL)
	fmt.Fprintf(out, "  user agent:  %s\n", c.UserAgent)
	fmt.Fprintf(out, "  timeout:     %s, %d retries\n", c.Timeout, c.MaxRetries)
	saved := "none saved"
	if c.SavedAgent != "" {
		saved = c.SavedAgent
	}
	fmt.Fprintf(out, "  credentials: %s (%s)\n", c.Credentials, saved)
	return nil
}
