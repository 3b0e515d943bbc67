package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stage-mapper/internal/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := command.Run(ctx, os.Args[1:], command.Dependencies{})

	stop()
	os.Exit(code)
}
