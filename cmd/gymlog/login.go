// ABOUTME: CLI commands for the device session.
// ABOUTME: login stores a user ID or verified access token, logout forgets it, whoami shows it.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/identity"
	"github.com/spf13/cobra"
)

var (
	loginUser   string
	loginToken  string
	loginSecret string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in on this device",
	Long: `Sign in so workouts are recorded under your user ID.

For a local database, a user ID is enough:

  gymlog login --user alice

With a hosted backend, pass the access token it issued. The token is
verified before it is saved, so jwt_secret must be configured (or passed
with --jwt-secret):

  gymlog login --token eyJhbGciOi...

The GYMLOG_ACCESS_TOKEN environment variable overrides any saved token.`,
	Annotations: map[string]string{offline: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		loginUser = strings.TrimSpace(loginUser)
		loginToken = strings.TrimSpace(loginToken)
		if (loginUser == "") == (loginToken == "") {
			return errors.New("pass exactly one of --user or --token")
		}
		if loginSecret != "" {
			cfg.JWTSecret = loginSecret
		}

		if loginToken != "" {
			session, err := identity.ParseToken(loginToken, cfg.TokenConfig())
			if err != nil {
				return err
			}
			cfg.AccessToken = loginToken
			cfg.UserID = session.Identity.UserID
		} else {
			cfg.AccessToken = ""
			cfg.UserID = loginUser
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Signed in as %s", cfg.UserID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:         "logout",
	Short:       "Forget the session on this device",
	Annotations: map[string]string{offline: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.UserID = ""
		cfg.AccessToken = ""
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Yellow("Signed out")
		if os.Getenv(config.TokenEnv) != "" {
			fmt.Printf("  %s is still set in the environment\n", config.TokenEnv)
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the signed-in user",
	Annotations: map[string]string{offline: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cfg.Identity()
		if err != nil {
			return err
		}
		fmt.Println(id.UserID)
		fmt.Println(faint.Sprintf("backend: %s", cfg.GetBackend()))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "user ID to record workouts under")
	loginCmd.Flags().StringVarP(&loginToken, "token", "t", "", "access token issued by the hosted backend")
	loginCmd.Flags().StringVar(&loginSecret, "jwt-secret", "", "secret used to verify --token (saved to config)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
