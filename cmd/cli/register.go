package cli

import (
	"fmt"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Bolsillo Claro user",
	Long:  "Creates a new user and logs in with it straight away.",
	RunE:  runRegister,
}

func runRegister(cmd *cobra.Command, _ []string) error {

	var req models.RegisterRequest

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&req.Name),
			huh.NewInput().
				Title("Email").
				Value(&req.Email),
			huh.NewInput().
				Title("Password").
				Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&req.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&req.ConfirmPassword),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("registration cancelled: %w", err)
	}

	res, err := app.auth.Register(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Registration successful!"))
	fmt.Printf("Welcome, %s. Create your first account with 'bolsillo accounts create'.\n", res.User.GetName())
	fmt.Println()

	return nil
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
