package server

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mwantia/tomodb/internal/agent"
	"github.com/mwantia/tomodb/pkg/db/migrations"
	"github.com/spf13/cobra"

	config "github.com/mwantia/tomodb/internal/config/server"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect and change the metadata store schema",
		Long: `Inspect and change the metadata store schema. The agent and the dataset
commands apply pending migrations on their own; these commands are for
checking the schema version or stepping back after a failed upgrade.`,
	}

	cmd.AddCommand(NewMigrateUpCommand())
	cmd.AddCommand(NewMigrateStatusCommand())
	cmd.AddCommand(NewMigrateRollbackCommand())

	return cmd
}

func NewMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migrations.Migrator) error {
				n, err := m.Migrate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
				return nil
			})
		},
	}
}

func NewMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List known migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migrations.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}
				return writeStatuses(cmd.OutOrStdout(), statuses)
			})
		},
	}
}

func NewMigrateRollbackCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recently applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}

			return withMigrator(cmd, func(m *migrations.Migrator) error {
				for range steps {
					reverted, err := m.Rollback(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Reverted migration %d (%s)\n", reverted.Version, reverted.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(m *migrations.Migrator) error) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	s, err := agent.ConnectStore(cmd.Context(), cfg.Metadata)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s.Migrator())
}

func writeStatuses(w io.Writer, statuses []migrations.Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tDESCRIPTION\tAPPLIED")
	for _, status := range statuses {
		applied := "pending"
		if status.Applied() {
			applied = status.AppliedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", status.Version, status.Description, applied)
	}
	return tw.Flush()
}
