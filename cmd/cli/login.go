package cli

import (
	"fmt"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Bolsillo Claro",
	Long: `Log in with your email and password. Missing values are prompted for.

Example:
  bolsillo login --email ana@example.com`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, _ []string) error {

	// Absent when reached from another command's login prompt
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	req := models.LoginRequest{
		Email:    email,
		Password: password,
	}

	if len(req.Email) == 0 || len(req.Password) == 0 {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Email").
					Value(&req.Email),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&req.Password),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
	}

	res, err := app.auth.Login(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Login successful!"))
	fmt.Printf("Welcome back, %s\n", res.User.GetName())
	fmt.Println()

	return nil
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when empty)")

	rootCmd.AddCommand(loginCmd)
}
