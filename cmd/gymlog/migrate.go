// ABOUTME: CLI command for copying your data between storage backends.
// ABOUTME: Moves workouts, exercises and the profile from the configured backend to another.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo           string
	migrateDataDir      string
	migratePostgresURL  string
	migratePostgresRole string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy your data to another storage backend",
	Long: `Copy the signed-in user's workouts, exercises and profile from the
configured backend to another one. IDs and timestamps are preserved.

USAGE:

  gymlog migrate --to postgres --postgres-url postgres://localhost/gymlog
  gymlog migrate --to sqlite --to-data-dir ~/gymlog-backup

IMPORTANT:

  - The destination must not already hold your workouts (duplicates fail)
  - Nothing is deleted from the source
  - Switch "backend" in ~/.config/gymlog/config.json afterwards`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch migrateTo {
		case config.BackendSQLite, config.BackendPostgres:
		default:
			return fmt.Errorf("unknown backend %q (use %s or %s)", migrateTo, config.BackendSQLite, config.BackendPostgres)
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		if migrateDataDir != "" {
			dstCfg.DataDir = migrateDataDir
		}
		if migratePostgresURL != "" {
			dstCfg.PostgresURL = migratePostgresURL
		}
		if migratePostgresRole != "" {
			dstCfg.PostgresRole = migratePostgresRole
		}

		if dstCfg.GetBackend() == cfg.GetBackend() &&
			dstCfg.GetDataDir() == cfg.GetDataDir() &&
			dstCfg.PostgresURL == cfg.PostgresURL {
			return errors.New("destination is the configured backend")
		}

		dst, err := dstCfg.OpenStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateOwner(ctx, store, dst, user.UserID)
		if err != nil {
			return err
		}

		color.Green("✓ Migrated to %s", dstCfg.GetBackend())
		fmt.Printf("  Workouts:  %d\n", summary.Workouts)
		fmt.Printf("  Exercises: %d\n", summary.Exercises)
		fmt.Printf("  Profiles:  %d\n", summary.Profiles)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite or postgres)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "to-data-dir", "", "destination data directory (sqlite)")
	migrateCmd.Flags().StringVar(&migratePostgresURL, "postgres-url", "", "destination connection string (postgres)")
	migrateCmd.Flags().StringVar(&migratePostgresRole, "postgres-role", "", "role assumed on the destination (postgres)")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
