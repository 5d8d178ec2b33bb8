// ABOUTME: Root Cobra command for gymlog CLI.
// ABOUTME: Loads config, logging, storage and the signed-in identity via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/identity"
	"github.com/harperreed/gymlog/internal/logging"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/harperreed/gymlog/internal/workouts"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// offline marks commands that run without storage or a session.
const offline = "offline"

var (
	cfg       *config.Config
	store     storage.Store
	repo      *workouts.Repository
	user      identity.Identity
	logCloser io.Closer

	dataDirFlag string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "gymlog",
	Short: "Personal workout log",
	Long: `gymlog records your workouts and the exercises in them.

QUICK START:

  $ gymlog login --user alice                          # Sign in on this device
  $ gymlog workout add "Push day" -e "bench:3x10@60"   # Log a workout
  $ gymlog workout exercise abc123 "dips:3x12"         # Add exercises later
  $ gymlog workout list                                # Newest first
  $ gymlog stats                                       # This week / this month

WORKOUTS:

  A workout has a name, a calendar date (defaults to today) and optional
  notes. Exercises carry sets, reps and a weight rounded to two decimals.
  Deleting a workout deletes its exercises.

  Exercise specs use the form name:SETSxREPS@WEIGHT, for example
  "squat:5x5@100". Weight and the SETSxREPS part are optional.

MCP INTEGRATION:

  Run 'gymlog mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants:

  {
    "mcpServers": {
      "gymlog": { "command": "gymlog", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  By default workouts are stored in SQLite at ~/.local/share/gymlog/gymlog.db.
  Set "backend": "postgres" and "postgres_url" in
  ~/.config/gymlog/config.json to use a shared Postgres database with
  row-level security.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		level := cfg.GetLogLevel()
		if verbose {
			level = "debug"
		}
		logCloser = logging.Setup(logging.Params{Level: level, File: cfg.GetLogFile()})

		if !needsSession(cmd) {
			return nil
		}

		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}

		user, err = cfg.Identity()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		store, err = cfg.OpenStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}

		repo = workouts.New(store, workouts.WithLogger(logrus.WithField("user", user.UserID)))
		cmd.SetContext(identity.NewContext(ctx, user))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if store != nil {
			err = store.Close()
			store = nil
		}
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
		return err
	},
}

// needsSession reports whether cmd reads or writes workouts.
func needsSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch {
		case c.Annotations[offline] == "true":
			return false
		case c.Name() == "help", c.Name() == "completion", c.Name() == cobra.ShellCompRequestCmd:
			return false
		}
	}
	return true
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "override the data directory (sqlite backend)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}
