package cli

import (
	"fmt"
	"time"

	"github.com/bolsillo-claro/cli/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long:  "Shows who is logged in, against which server, and when the access token expires.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fmt.Println(headerStyle.Render("Bolsillo Claro"))
		fmt.Printf("  Server:  %s\n", cfg.GetAPIURL())
		fmt.Printf("  Storage: %s\n", cfg.Storage.Driver)
		if source := cfg.Source(); len(source) > 0 {
			fmt.Printf("  Config:  %s\n", source)
		}
		fmt.Printf("  Version: %s\n", common.GetVersion())
		fmt.Println()

		session, err := app.sessions.Session(ctx)
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}

		if !session.IsAuthenticated || session.User == nil {
			fmt.Println(infoStyle.Render("ℹ️  Not logged in"))
			return nil
		}

		fmt.Println(headerStyle.Render("Session"))
		fmt.Printf("  User:    %s <%s>\n", session.User.GetName(), session.User.Email)

		if expiry, ok := tokenExpiry(session.AccessToken); ok {
			if expiry.Before(time.Now()) {
				// Still usable: the next request refreshes it
				fmt.Println("  Access:  " + expiredStyle.Render(fmt.Sprintf("expired %s", expiry.Local().Format("2006-01-02 15:04:05"))))
			} else {
				fmt.Println("  Access:  " + activeStyle.Render(fmt.Sprintf("expires %s (%s)",
					expiry.Local().Format("2006-01-02 15:04:05"),
					formatDuration(time.Until(expiry)))))
			}
		}

		if expiry, ok := tokenExpiry(session.RefreshToken); ok {
			fmt.Printf("  Refresh: expires %s\n", expiry.Local().Format("2006-01-02 15:04:05"))
		}

		selection, err := app.accounts.Active(ctx)
		if err != nil {
			return fmt.Errorf("failed to read active account: %w", err)
		}

		if selection.IsSet() && selection.Account != nil {
			fmt.Printf("  Account: %s %s\n", selection.Account.Name, mutedStyle.Render(selection.AccountID))
		} else {
			fmt.Println("  Account: " + warningStyle.Render("none selected"))
		}

		return nil
	},
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server is the only judge of validity.
func tokenExpiry(token string) (time.Time, bool) {
	if len(token) == 0 {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time, true
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "expired"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 24 {
		days := hours / 24
		hours = hours % 24
		if days == 1 {
			return fmt.Sprintf("%d day, %d hours", days, hours)
		}
		return fmt.Sprintf("%d days, %d hours", days, hours)
	}

	if hours > 0 {
		return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
	}

	return fmt.Sprintf("%d minutes", minutes)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
