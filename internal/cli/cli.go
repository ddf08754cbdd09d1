// Package cli holds the timeclock command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/timeclock/internal/app"
)

const stopTimeout = 10 * time.Second

// NewRootCommand builds the root timeclock CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "timeclock",
		Short:         "Timesheet and payroll record keeper",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newStartCmd(),
		newMigrateCmd(),
		newSchemaCmd(),
		newSeedCmd(),
		newWorkerCmd(),
	)
	return root
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the HTTP and gRPC services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), app.Module)
		},
	}
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "worker", Short: "Manage background workers"}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the change audit worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), app.Worker)
		},
	})
	return cmd
}

// serve starts the app and keeps it up until ctx ends.
func serve(ctx context.Context, opts fx.Option) error {
	application := fx.New(opts)
	if err := application.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return application.Stop(stopCtx)
}

// withCore starts the core app plus extra, hands the populated T to fn and
// stops the app again.
func withCore[T any](ctx context.Context, extra fx.Option, fn func(context.Context, T) error) error {
	var dep T
	application := fx.New(app.Core, extra, fx.Populate(&dep))
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()
	return fn(ctx, dep)
}
