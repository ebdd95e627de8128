package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	initHelp(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(os.Stderr, rootCmd.ExecuteContext(ctx))
	stop()
	os.Exit(code)
}

// exitCode prints err, if any, and maps it to the process exit status.
func exitCode(stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInterrupted), errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "\nInterrupted.")
		return exitInterrupted
	case errors.As(err, new(reportedError)):
		return exitFailure
	default:
		outputError(stderr, err)
		return exitFailure
	}
}
