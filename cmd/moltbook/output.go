package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatPayload renders a decoded payload with secrets masked.
func formatPayload(v any) string {
	data, err := json.MarshalIndent(moltbook.Redact(v), "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", moltbook.Redact(v))
	}
	return renderJSONBlock(string(data))
}

// printResult prints a status line and the normalized payload.
func printResult(w io.Writer, res *moltbook.Result) {
	switch {
	case res.IsRedirect():
		printWarning(w, "HTTP %d (redirect not followed)", res.StatusCode)
	case res.StatusCode >= 200 && res.StatusCode < 300:
		printSuccess(w, "HTTP %d", res.StatusCode)
	default:
		printInfo(w, "HTTP %d", res.StatusCode)
	}
	fmt.Fprintln(w, formatPayload(res.Fields))
}

// printCallError prints a failed call: status line, scrubbed message,
// details and hints.
func printCallError(w io.Writer, err error) {
	var apiErr *moltbook.APIError
	if !errors.As(err, &apiErr) {
		printError(w, "%s", scrubSensitiveData(err.Error()))
		return
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		printWarning(w, "HTTP 429 (rate limited)")
	case apiErr.StatusCode != 0:
		printError(w, "HTTP %d", apiErr.StatusCode)
	default:
		printError(w, "Request failed (%s)", apiErr.Kind)
	}
	printMuted(w, "%s", scrubSensitiveData(apiErr.Message))

	if len(apiErr.Details) > 0 {
		fmt.Fprintln(w, scrubSensitiveData(formatPayload(apiErr.Details)))
	}
	for _, h := range hintsFor(err) {
		printInfo(w, "%s", h)
	}
}

// outputError prints an error to stderr, ensuring no API keys are leaked.
func outputError(w io.Writer, err error) {
	printError(w, "Error: %s", scrubSensitiveData(err.Error()))
}

// scrubSensitiveData masks the active key wherever it appears in msg.
func scrubSensitiveData(msg string) string {
	return moltbook.ScrubKey(msg, activeKey)
}

// reportedError is an error already printed for the user; main only sets
// the exit status.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// redactedFields returns the result payload with secrets masked.
func redactedFields(res *moltbook.Result) map[string]any {
	return moltbook.RedactFields(res.Fields)
}
