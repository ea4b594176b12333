// Package main provides the entry point for the locdiff CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sumatoshi-tech/locdiff/cmd/locdiff/commands"
	"github.com/Sumatoshi-tech/locdiff/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		var statusErr *commands.StatusError
		if !errors.As(err, &statusErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(commands.ExitCode(err))
	}
}
