// ABOUTME: CLI commands for the signed-in user's profile.
// ABOUTME: Show the profile or set and clear the display name.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/spf13/cobra"
)

var profileClear bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := repo.Profile(cmd.Context())
		if err != nil {
			return err
		}
		printProfile(p)
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set [username]",
	Short: "Set your display name",
	Long: `Set your display name, or clear it with --clear.

  gymlog profile set "Alice L."
  gymlog profile set --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var username string
		switch {
		case profileClear:
		case len(args) == 1:
			username = args[0]
		default:
			return errors.New("pass a username or --clear")
		}

		p, err := repo.UpdateProfile(cmd.Context(), &username)
		if err != nil {
			return err
		}
		color.Green("✓ Profile updated")
		printProfile(p)
		return nil
	},
}

func printProfile(p *models.Profile) {
	fmt.Printf("  Name:    %s\n", p.DisplayName())
	fmt.Printf("  User ID: %s\n", p.Owner)
	fmt.Printf("  Since:   %s\n", faint.Sprint(p.CreatedAt.Local().Format("2006-01-02")))
}

func init() {
	profileSetCmd.Flags().BoolVar(&profileClear, "clear", false, "remove the display name")
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE:  profileCmd.RunE,
	})
	rootCmd.AddCommand(profileCmd)
}
