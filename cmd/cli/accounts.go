package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/navigation"
	"github.com/bolsillo-claro/cli/internal/resources"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type AccountAction string

const (
	ActionListAccounts  AccountAction = "list"
	ActionUseAccount    AccountAction = "use"
	ActionCreateAccount AccountAction = "create"
	ActionClearAccount  AccountAction = "clear"
	ActionExit          AccountAction = "exit"
)

var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Short:   "Interactive account management",
	Long:    `List, create and switch between your personal and family accounts.`,
	PreRunE: requireSession(navigation.RouteAccounts),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveAccountManager(cmd.Context())
	},
}

var accountsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your accounts",
	PreRunE: requireSession(navigation.RouteAccounts),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listAccounts(cmd.Context())
	},
}

var accountsUseCmd = &cobra.Command{
	Use:   "use [id or name]",
	Short: "Select the account later commands work on",
	Long: `Select the active account. Expenses, incomes, savings goals and the
dashboard are always scoped to the active account.

Example:
  bolsillo accounts use Casa`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: requireSession(navigation.RouteAccounts),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		return useAccount(cmd.Context(), query)
	},
}

var accountsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an account",
	PreRunE: requireSession(navigation.RouteAccounts),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		accountType, _ := cmd.Flags().GetString("type")
		currency, _ := cmd.Flags().GetString("currency")

		return createAccount(cmd.Context(), models.CreateAccountRequest{
			Name:     name,
			Type:     models.AccountType(accountType),
			Currency: models.Currency(currency),
		})
	},
}

var accountsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the active account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearAccount(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsUseCmd)
	accountsCmd.AddCommand(accountsCreateCmd)
	accountsCmd.AddCommand(accountsClearCmd)

	accountsCreateCmd.Flags().String("name", "", "Account name")
	accountsCreateCmd.Flags().String("type", "", "personal or family")
	accountsCreateCmd.Flags().String("currency", "", "ARS, USD or EUR")
}

func runInteractiveAccountManager(ctx context.Context) error {
	fmt.Println(titleStyle.Render("Accounts"))

	for {
		action, err := promptForAccountAction()
		if err != nil {
			return fmt.Errorf("failed to get action: %w", err)
		}

		switch action {
		case ActionListAccounts:
			err = listAccounts(ctx)
		case ActionUseAccount:
			err = useAccount(ctx, "")
		case ActionCreateAccount:
			err = createAccount(ctx, models.CreateAccountRequest{})
		case ActionClearAccount:
			err = clearAccount(ctx)
		case ActionExit:
			return nil
		}

		if err != nil {
			// The session is gone; every other action would fail the same way
			if !app.sessions.IsAuthenticated(ctx) {
				return err
			}
			fmt.Println(errorStyle.Render(describeError(err)))
		}

		fmt.Println()
	}
}

func promptForAccountAction() (AccountAction, error) {
	var action string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("List accounts", string(ActionListAccounts)),
					huh.NewOption("Switch active account", string(ActionUseAccount)),
					huh.NewOption("Create account", string(ActionCreateAccount)),
					huh.NewOption("Clear active account", string(ActionClearAccount)),
					huh.NewOption("Exit", string(ActionExit)),
				).
				Value(&action),
		),
	)

	if err := form.Run(); err != nil {
		return ActionExit, err
	}

	return AccountAction(action), nil
}

func listAccounts(ctx context.Context) error {
	list, err := resources.NewAccounts(app.client).List(ctx)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Accounts (%d)", list.Count)))
	fmt.Println()

	if len(list.Accounts) == 0 {
		fmt.Println(infoStyle.Render("ℹ️  No accounts yet, create one with 'bolsillo accounts create'"))
		return nil
	}

	active := app.accounts.ActiveAccountID(ctx)

	for _, account := range list.Accounts {
		marker := "  "
		name := account.Name
		if account.ID == active {
			marker = activeStyle.Render("● ")
			name = activeStyle.Render(name)
		}
		fmt.Printf("%s%s  %s %s  %s\n",
			marker,
			name,
			badgeStyle.Render(string(account.Type)),
			account.Currency,
			mutedStyle.Render(account.ID))
	}

	return nil
}

func useAccount(ctx context.Context, query string) error {
	list, err := resources.NewAccounts(app.client).List(ctx)
	if err != nil {
		return err
	}

	if len(list.Accounts) == 0 {
		return errors.New("no accounts yet, create one with 'bolsillo accounts create'")
	}

	var selected *models.Account

	if len(query) > 0 {
		for i, account := range list.Accounts {
			if account.ID == query || strings.EqualFold(account.Name, query) {
				selected = &list.Accounts[i]
				break
			}
		}
		if selected == nil {
			return fmt.Errorf("no account matches %q", query)
		}
	} else {
		var id string
		options := make([]huh.Option[string], 0, len(list.Accounts))
		for _, account := range list.Accounts {
			label := fmt.Sprintf("%s (%s, %s)", account.Name, account.Type, account.Currency)
			options = append(options, huh.NewOption(label, account.ID))
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Select the active account").
					Options(options...).
					Value(&id),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("selection cancelled: %w", err)
		}

		for i, account := range list.Accounts {
			if account.ID == id {
				selected = &list.Accounts[i]
			}
		}
		if selected == nil {
			return errors.New("no account selected")
		}
	}

	if err := app.accounts.SetActiveAccount(ctx, *selected); err != nil {
		return fmt.Errorf("failed to store active account: %w", err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Now using %s", selected.Name)))
	return nil
}

func createAccount(ctx context.Context, req models.CreateAccountRequest) error {

	if len(req.Name) == 0 || len(req.Type) == 0 || len(req.Currency) == 0 {
		if len(req.Type) == 0 {
			req.Type = models.AccountTypePersonal
		}
		if len(req.Currency) == 0 {
			req.Currency = models.CurrencyARS
		}

		typeOptions := make([]huh.Option[models.AccountType], 0, len(models.AccountTypes))
		for _, accountType := range models.AccountTypes {
			typeOptions = append(typeOptions, huh.NewOption(string(accountType), accountType))
		}

		currencyOptions := make([]huh.Option[models.Currency], 0, len(models.Currencies))
		for _, currency := range models.Currencies {
			label := fmt.Sprintf("%s (%s)", currency, models.CurrencySymbols[currency])
			currencyOptions = append(currencyOptions, huh.NewOption(label, currency))
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name").
					Value(&req.Name),
				huh.NewSelect[models.AccountType]().
					Title("Type").
					Options(typeOptions...).
					Value(&req.Type),
				huh.NewSelect[models.Currency]().
					Title("Currency").
					Options(currencyOptions...).
					Value(&req.Currency),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("account creation cancelled: %w", err)
		}
	}

	account, err := resources.NewAccounts(app.client).Create(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Created %s", account.Name)))

	if len(app.accounts.ActiveAccountID(ctx)) == 0 {
		if err := app.accounts.SetActiveAccount(ctx, *account); err != nil {
			return fmt.Errorf("failed to store active account: %w", err)
		}
		fmt.Println(infoStyle.Render("It is now your active account"))
	}

	return nil
}

func clearAccount(ctx context.Context) error {
	if err := app.accounts.ClearActiveAccount(ctx); err != nil {
		return fmt.Errorf("failed to clear active account: %w", err)
	}
	fmt.Println(successStyle.Render("Active account cleared"))
	return nil
}
