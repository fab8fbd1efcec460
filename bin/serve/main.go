package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gallery-showcase/cmd"
	"gallery-showcase/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration comes from the environment and .env only
	if err := cmd.Serve(ctx); err != nil {
		observability.Errorf("Server error: %v", err)
		stop()
		os.Exit(1)
	}
}
