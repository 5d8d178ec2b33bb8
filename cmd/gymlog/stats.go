// ABOUTME: CLI command for workout statistics.
// ABOUTME: Shows this-week and this-month counts over the recent window.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/spf13/cobra"
)

var statsWindow int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workout counts for this week and this month",
	Long: `Show how many of your most recent workouts fall in the last 7 and
30 days, plus the total number of workouts you have logged.

The window defaults to recent_window from the config (5 if unset).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		window := statsWindow
		if window <= 0 {
			window = cfg.GetRecentWindow()
		}

		summary, err := stats.Summarize(cmd.Context(), repo, user.UserID, window, time.Now())
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		fmt.Printf("%s %d\n", bold.Sprint("This week: "), summary.ThisWeek)
		fmt.Printf("%s %d\n", bold.Sprint("This month:"), summary.ThisMonth)
		fmt.Printf("%s %d\n", bold.Sprint("Lifetime:  "), summary.Lifetime)
		fmt.Println(faint.Sprintf("(counted over your last %d workouts)", window))

		if len(summary.Recent) > 0 {
			fmt.Println("\nRecent:")
			for _, w := range summary.Recent {
				fmt.Printf("  %s  %s\n", w.Date.Format(models.DateLayout), w.Name)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsWindow, "window", "w", 0, "how many recent workouts to count over")
	rootCmd.AddCommand(statsCmd)
}
