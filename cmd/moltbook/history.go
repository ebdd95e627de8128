package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook/internal/credentials"
	"github.com/hyperengineering/moltbook/internal/journal"
)

var (
	historyLimit int
	historyStats bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent API calls",
	Long: `List recent calls from the local call journal, newest first.

The journal records method, path, status, attempts, duration and error
kind for every call. It never stores request or response bodies, and
never stores the API key. Set MOLTBOOK_JOURNAL=off to disable it.

Example:
  moltbook history
  moltbook history --limit 50
  moltbook history --stats`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

type historyEntry struct {
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code,omitempty"`
	Attempts   int       `json:"attempts"`
	DurationMS int64     `json:"duration_ms"`
	ErrorKind  string    `json:"error_kind,omitempty"`
}

type historyStatsOutput struct {
	Calls  int            `json:"calls"`
	Failed int            `json:"failed"`
	ByKind map[string]int `json:"by_kind"`
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of calls to show")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "Show totals instead of individual calls")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	path := credentials.JournalPath()
	if path == "" {
		return fmt.Errorf("the call journal is disabled (%s)", credentials.EnvJournal)
	}

	j, err := journal.Open(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	if historyStats {
		st, err := j.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return outputAsJSON(cmd, historyStatsOutput(st))
		}
		printStats(cmd.OutOrStdout(), st)
		return nil
	}

	entries, err := j.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if outputJSON {
		out := make([]historyEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, historyEntry{
				ID:         e.ID,
				At:         e.At,
				Method:     e.Method,
				Path:       e.Path,
				StatusCode: e.StatusCode,
				Attempts:   e.Attempts,
				DurationMS: e.Duration.Milliseconds(),
				ErrorKind:  e.ErrorKind,
			})
		}
		return outputAsJSON(cmd, out)
	}

	if len(entries) == 0 {
		printMuted(cmd.OutOrStdout(), "No calls recorded yet.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderHistory(entries))
	return nil
}

func renderHistory(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "-"
		if e.StatusCode != 0 {
			status = strconv.Itoa(e.StatusCode)
		}
		errKind := ""
		if e.Failed() {
			errKind = e.ErrorKind
		}
		rows = append(rows, []string{
			e.At.Local().Format("2006-01-02 15:04:05"),
			e.Method,
			e.Path,
			status,
			strconv.Itoa(e.Attempts),
			e.Duration.Round(time.Millisecond).String(),
			errKind,
		})
	}
	return renderTable([]string{"TIME", "METHOD", "PATH", "STATUS", "ATTEMPTS", "DURATION", "ERROR"}, rows)
}

func printStats(w io.Writer, st journal.Stats) {
	fmt.Fprintln(w, styled(headerStyle, "Call Journal"))
	fmt.Fprintf(w, "Calls:  %d\n", st.Calls)
	fmt.Fprintf(w, "Failed: %d\n", st.Failed)

	kinds := make([]string, 0, len(st.ByKind))
	for k := range st.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-10s %d\n", k+":", st.ByKind[k])
	}
}
