// Package cli implements the gstbillctl maintenance commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gstbill/gstbill/internal/app"
)

// Env is an opened dataset with its services.
type Env struct {
	Config   *app.Config
	Services *app.Services
	close    func()
}

// NewEnv wraps services; closeFn may be nil.
func NewEnv(cfg *app.Config, services *app.Services, closeFn func()) *Env {
	return &Env{Config: cfg, Services: services, close: closeFn}
}

// Close releases the storage behind the environment.
func (e *Env) Close() {
	if e != nil && e.close != nil {
		e.close()
	}
}

// Options configures the command tree.
type Options struct {
	Open     func(ctx context.Context) (*Env, error)
	OpenJobs func(ctx context.Context) (JobsAPI, error)
	Stdout   io.Writer
	Stderr   io.Writer
}

// OpenFromEnv loads configuration and storage from the process environment.
func OpenFromEnv(ctx context.Context) (*Env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	// stdout carries command output, so only warnings go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	services, err := app.NewServices(cfg, logger, storage, nil)
	if err != nil {
		storage.Close()
		return nil, err
	}
	return NewEnv(cfg, services, storage.Close), nil
}

// NewRootCommand builds the gstbillctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "gstbillctl",
		Short:         "Maintenance commands for the gstbill invoice store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if opts.Stdout != nil {
		root.SetOut(opts.Stdout)
	}
	if opts.Stderr != nil {
		root.SetErr(opts.Stderr)
	}

	root.AddCommand(
		counterCommand(opts),
		commitNumberCommand(opts),
		statsCommand(opts),
		purgeBinCommand(opts),
		exportCommand(opts),
		importCommand(opts),
		jobsCommand(opts),
	)
	return root
}

// withEnv opens the environment for the duration of run.
func withEnv(opts Options, run func(cmd *cobra.Command, args []string, env *Env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if opts.Open == nil {
			return fmt.Errorf("no dataset configured")
		}
		env, err := opts.Open(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()
		return run(cmd, args, env)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
