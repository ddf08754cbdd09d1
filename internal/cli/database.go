package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/timeclock/internal/database"
	"github.com/Additional-Code/timeclock/internal/migration"
	"github.com/Additional-Code/timeclock/internal/seeder"
)

var errDropUnconfirmed = errors.New("refusing to drop tables without --yes")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Run database migrations"}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), fx.Options(), func(ctx context.Context, mig *migration.Migrator) error {
				if err := mig.Up(ctx); err != nil {
					return err
				}
				return report(ctx, cmd, mig, "migrations applied")
			})
		},
	}

	var (
		steps int
		all   bool
	)
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), fx.Options(), func(ctx context.Context, mig *migration.Migrator) error {
				if err := mig.Down(ctx, steps, all); err != nil {
					return err
				}
				return report(ctx, cmd, mig, "migrations rolled back")
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	down.Flags().BoolVar(&all, "all", false, "Roll back every applied migration")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), fx.Options(), func(ctx context.Context, mig *migration.Migrator) error {
				return report(ctx, cmd, mig, "")
			})
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func report(ctx context.Context, cmd *cobra.Command, mig *migration.Migrator, done string) error {
	version, err := mig.Version(ctx)
	if err != nil {
		return err
	}
	if done != "" {
		fmt.Fprintln(cmd.OutOrStdout(), done)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create or drop the tables directly from the entity definitions",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create missing tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), fx.Options(), func(ctx context.Context, conns *database.Connections) error {
				if err := database.CreateSchema(ctx, conns.Writer); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema created")
				return nil
			})
		},
	}

	var confirmed bool
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop every timeclock table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errDropUnconfirmed
			}
			return withCore(cmd.Context(), fx.Options(), func(ctx context.Context, conns *database.Connections) error {
				if err := database.DropSchema(ctx, conns.Writer); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema dropped")
				return nil
			})
		},
	}
	drop.Flags().BoolVar(&confirmed, "yes", false, "Confirm dropping all data")

	cmd.AddCommand(create, drop)
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo data set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd.Context(), seeder.Module, func(ctx context.Context, seed *seeder.Seeder) error {
				created, err := seed.Demo(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seed data applied (%d records created)\n", created)
				return nil
			})
		},
	}
}
