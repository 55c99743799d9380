// Package main is the tableroll command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/tableroll/internal/cmd/cli"
	"github.com/louisbranch/tableroll/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		config.Exitf("Error: %v", err)
	}
}
