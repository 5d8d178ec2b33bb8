// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs the stdio MCP server as the signed-in user, optionally serving /metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/gymlog/internal/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var metricsAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and acts as the signed-in user.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "gymlog": {
        "command": "gymlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_workout       Record a workout, optionally with exercises
  add_exercises     Add exercises to a workout
  list_workouts     List recent workouts
  get_workout       Get a workout with all its exercises
  update_workout    Change a workout's name, date or notes
  delete_workout    Delete a workout and its exercises
  get_stats         Counts for this week and this month
  get_profile       Show the profile
  update_profile    Set or clear the display name

AVAILABLE RESOURCES:

  gymlog://recent     Recent workouts with exercises
  gymlog://summary    Stats summary

METRICS:

  Pass --metrics-addr :9090 to expose Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, user, mcp.WithWindow(cfg.GetRecentWindow()))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				logrus.Infof("serving metrics on %s/metrics", metricsAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logrus.Errorf("metrics server: %v", err)
				}
			}()
			defer func() {
				shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
				defer done()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		return server.Serve(ctx)
	},
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func init() {
	mcpCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090)")
	rootCmd.AddCommand(mcpCmd)
}
