package cli

import (
	"errors"
	"fmt"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/navigation"
	"github.com/bolsillo-claro/cli/internal/resources"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Monthly summary of the active account",
	PreRunE: requireSession(navigation.RouteDashboard),
	RunE:    runDashboard,
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	selection, err := app.accounts.Active(ctx)
	if err != nil {
		return err
	}
	if !selection.IsSet() {
		return errors.New("no active account, choose one with 'bolsillo accounts use'")
	}

	// The root command runs this without the flag
	month, _ := cmd.Flags().GetString("month")

	summary, err := resources.NewDashboard(app.client).Summary(ctx, month)
	if err != nil {
		return err
	}

	name := selection.AccountID
	if selection.Account != nil {
		name = selection.Account.Name
	}

	symbol := models.CurrencySymbols[models.Currency(summary.PrimaryCurrency)]

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s · %s", name, summary.Period)))
	printAmount("Income", symbol, summary.TotalIncome)
	printAmount("Expenses", symbol, summary.TotalExpenses)
	printAmount("Savings goals", symbol, summary.TotalAssignedToGoals)
	fmt.Println()

	balance := fmt.Sprintf("%s %.2f", symbol, summary.AvailableBalance)
	if summary.AvailableBalance < 0 {
		fmt.Printf("%-16s%s\n", "Available", errorStyle.Render(amountStyle.Render(balance)))
	} else {
		fmt.Printf("%-16s%s\n", "Available", successStyle.Render(amountStyle.Render(balance)))
	}

	return nil
}

func printAmount(label string, symbol string, amount float64) {
	fmt.Printf("%-16s%s\n", label, amountStyle.Render(fmt.Sprintf("%s %.2f", symbol, amount)))
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().String("month", "", "Month to summarise as YYYY-MM (default current month)")
}
