// Package main is the m2t command-line entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/m2t/internal/cli"
	"github.com/rshade/m2t/pkg/version"
)

func main() {
	// Cobra prints the error itself; main only maps it to the exit code.
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run executes the root command. An interrupt cancels the context, which stops
// the batch before the next file.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(version.GetVersion()).ExecuteContext(ctx)
}
