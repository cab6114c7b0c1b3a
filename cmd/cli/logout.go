package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Long:  "Removes the stored tokens, the active account and any cached responses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.auth.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		fmt.Println(successStyle.Render("Logged out"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
