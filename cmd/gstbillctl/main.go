package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gstbill/gstbill/cmd/gstbillctl/cli"
	"github.com/gstbill/gstbill/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping gstbillctl")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.LoadDotEnv(); err != nil {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	root := cli.NewRootCommand(cli.Options{
		Open:     cli.OpenFromEnv,
		OpenJobs: cli.OpenJobsFromEnv,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gstbillctl: %v\n", err)
		os.Exit(1)
	}
}
