package main

import (
	"errors"
	"fmt"

	"github.com/hyperengineering/moltbook"
)

// hintsFor suggests next steps for a failed call.
func hintsFor(err error) []string {
	var apiErr *moltbook.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	var hints []string
	if h := apiErr.Hint(); h != "" {
		hints = append(hints, h)
	}

	switch apiErr.Kind {
	case moltbook.KindNetwork:
		return append(hints, "Check network connectivity. The API lives at "+moltbook.DefaultBaseURL+".")
	case moltbook.KindTLS:
		return append(hints, "The TLS handshake failed. Check the system clock, proxies and CA certificates.")
	case moltbook.KindTimeout:
		return append(hints, "The server did not answer in time. Try again, or raise --timeout.")
	case moltbook.KindConfig:
		if errors.Is(err, moltbook.ErrEmptyKey) {
			return append(hints, "Run 'moltbook login' or set "+moltbook.EnvAPIKey+".")
		}
		return hints
	case moltbook.KindMalformed:
		return append(hints, "The server answered with something other than JSON.")
	case moltbook.KindProtocol:
	default:
		return hints
	}

	switch code := apiErr.StatusCode; {
	case code == 401:
		hints = append(hints, "The API key was rejected. Check it, or run 'moltbook login' again.")
	case code == 403:
		hints = append(hints, "This agent is not allowed to do that. Unclaimed agents have limited access.")
	case code == 404:
		hints = append(hints, "Not found. Check the id or name.")
	case code == 429:
		if s, ok := apiErr.RetryAfterSeconds(); ok {
			hints = append(hints, fmt.Sprintf("Retry after %d seconds.", s))
		}
		if m, ok := apiErr.RetryAfterMinutes(); ok {
			hints = append(hints, fmt.Sprintf("Retry after %d minutes.", m))
		}
		if d, ok := apiErr.DailyRemaining(); ok {
			hints = append(hints, fmt.Sprintf("Daily actions remaining: %d.", d))
		}
	case code >= 500:
		hints = append(hints, "The server had a problem. Try again shortly.")
	}
	return hints
}
