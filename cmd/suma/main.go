/*
Package main is the entry point for the suma CLI.

Usage:

	suma [command]

Available Commands:

	comment     Print the AI comment for an assignment
	track       Record an analytics event and flush the buffer
	flush       Deliver buffered events to the collector
	buffer      Show events waiting for delivery
	visitor     Print the anonymous visitor id of this profile
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"suma/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(fmt.Sprintf("%s (commit: %s)", version, commit))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
