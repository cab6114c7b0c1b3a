package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bolsillo-claro/cli/internal/auth"
	"github.com/bolsillo-claro/cli/internal/cache"
	"github.com/bolsillo-claro/cli/internal/client"
	"github.com/bolsillo-claro/cli/internal/config"
	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/navigation"
	"github.com/bolsillo-claro/cli/internal/sessions"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Global configuration instance
var cfg *config.Config
var app *application

// application is everything a command needs, wired once per run.
type application struct {
	storage   storage.Storage
	cache     cache.Cache
	sessions  *sessions.Store
	accounts  *sessions.AccountStore
	client    *client.Client
	auth      *auth.Service
	navigator *navigation.Recorder
	guard     *navigation.Guard
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {

	s, err := cfg.OpenStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	c, err := cfg.OpenCache(ctx)
	if err != nil {
		closeStorage(s)
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}

	a := &application{
		storage:   s,
		cache:     c,
		sessions:  sessions.NewStore(s),
		accounts:  sessions.NewAccountStore(s),
		navigator: &navigation.Recorder{},
	}

	a.client, err = client.New(client.Options{
		BaseURL:   cfg.GetAPIURL(),
		Timeout:   cfg.API.Timeout,
		Storage:   s,
		Sessions:  a.sessions,
		Accounts:  a.accounts,
		Cache:     c,
		Navigator: a.navigator,
	})
	if err != nil {
		closeStorage(s)
		closeCache(c)
		return nil, err
	}

	a.auth, err = auth.NewService(a.client, a.sessions, a.accounts, a.navigator)
	if err != nil {
		closeStorage(s)
		closeCache(c)
		return nil, err
	}

	a.guard = navigation.NewGuard(a.sessions, a.navigator)

	return a, nil
}

func (a *application) Close() {
	closeStorage(a.storage)
	closeCache(a.cache)
}

func closeStorage(s storage.Storage) {
	if err := s.Close(); err != nil {
		logrus.WithError(err).Warnln("Failed to close session storage")
	}
}

func closeCache(c cache.Cache) {
	if err := c.Close(); err != nil {
		logrus.WithError(err).Warnln("Failed to close response cache")
	}
}

// loadConfig loads the configuration based on the --config flag or default locations
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.Load(configFile)
}

func preRunConfigE(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err == nil && verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	apiURL, err := cmd.Flags().GetString("api-url")
	if err == nil && len(apiURL) > 0 {
		cfg.SetAPIURL(apiURL)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	app, err = newApplication(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return nil
}

func postRunE(_ *cobra.Command, _ []string) error {
	if app != nil {
		app.Close()
	}
	return nil
}

// requireSession guards a command the way a protected page is guarded:
// without a session the user is sent to log in first.
func requireSession(route navigation.Route) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if app.guard.Allow(cmd.Context(), route) {
			return nil
		}
		return promptAndLogin(cmd)
	}
}

// promptAndLogin prompts the user if they want to login and handles the login process
func promptAndLogin(cmd *cobra.Command) error {
	fmt.Println()
	fmt.Println(titleStyle.Render("Authentication Required"))
	fmt.Println("No active session found.")
	fmt.Println()

	var shouldLogin bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Would you like to login now?").
				Value(&shouldLogin),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("authentication required, run 'bolsillo login': %w", err)
	}

	if !shouldLogin {
		return errors.New("authentication required but login was declined")
	}

	return runLogin(cmd, []string{})
}

var rootCmd = &cobra.Command{
	Use:   "bolsillo",
	Short: "Bolsillo Claro - personal finance tracking from the terminal",
	Long: `Bolsillo Claro keeps track of your accounts, expenses, incomes and savings goals.

Sessions are stored per API server under ~/.config/bolsillo and refreshed
automatically while the refresh token is valid.`,
	PersistentPreRunE:  preRunConfigE,
	PersistentPostRunE: postRunE,
	SilenceErrors:      true,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.sessions.IsAuthenticated(cmd.Context()) {
			return promptAndLogin(cmd)
		}
		return runDashboard(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.config/bolsillo/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "Override the API base URL (e.g., http://localhost:8080/api)")
}

func GetCommandOptions() *cobra.Command {
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	logrus.WithError(err).Debugln("Command failed")
	fmt.Fprintln(os.Stderr, errorStyle.Render(describeError(err)))

	if app != nil && app.navigator.Last() == navigation.RouteLogin && errors.Is(err, client.ErrSessionExpired) {
		fmt.Fprintln(os.Stderr, infoStyle.Render("Run 'bolsillo login' to sign in again."))
	}

	return 1
}

// describeError shows API and form errors the way the server phrased them
// and everything else as is.
func describeError(err error) string {
	var (
		responseErr   *client.ResponseError
		transportErr  *client.TransportError
		validationErr *models.ValidationError
	)
	if errors.As(err, &responseErr) || errors.As(err, &transportErr) || errors.As(err, &validationErr) {
		return client.UserMessage(err)
	}
	return err.Error()
}
