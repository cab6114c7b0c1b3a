// Package auth holds the user facing identity operations: login, register
// and logout. It ties the HTTP client, the session stores and navigation
// together; nothing else should write a session after authenticating.
package auth

import (
	"context"
	"errors"

	"github.com/bolsillo-claro/cli/internal/client"
	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/navigation"
	"github.com/bolsillo-claro/cli/internal/sessions"
	"github.com/sirupsen/logrus"
)

type Service struct {
	client    *client.Client
	sessions  *sessions.Store
	accounts  *sessions.AccountStore
	navigator navigation.Navigator
}

func NewService(c *client.Client, store *sessions.Store, accounts *sessions.AccountStore, navigator navigation.Navigator) (*Service, error) {
	if c == nil || store == nil || accounts == nil {
		return nil, errors.New("client and session stores are required")
	}
	if navigator == nil {
		navigator = navigation.Discard
	}
	return &Service{
		client:    c,
		sessions:  store,
		accounts:  accounts,
		navigator: navigator,
	}, nil
}

// Login validates the credentials locally, authenticates against the API and
// establishes the session. Invalid input never reaches the network.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res models.AuthResponse
	if err := s.client.Post(ctx, client.EndpointLogin, req, &res); err != nil {
		logrus.WithError(err).WithField("email", req.Email).Debugln("Login failed")
		return nil, err
	}

	if err := s.establish(ctx, &res); err != nil {
		return nil, err
	}

	logrus.WithField("user", res.User.ID).Infoln("Logged in")

	return &res, nil
}

// Register creates the account and logs the user in straight away.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res models.AuthResponse
	if err := s.client.Post(ctx, client.EndpointRegister, req, &res); err != nil {
		logrus.WithError(err).WithField("email", req.Email).Debugln("Registration failed")
		return nil, err
	}

	if err := s.establish(ctx, &res); err != nil {
		return nil, err
	}

	logrus.WithField("user", res.User.ID).Infoln("Registered")

	return &res, nil
}

func (s *Service) establish(ctx context.Context, res *models.AuthResponse) error {

	// Nothing cached for a previous user may be served to this one.
	if err := s.client.InvalidateCache(ctx); err != nil {
		logrus.WithError(err).Warnln("Failed to clear response cache")
	}

	if err := s.sessions.SetAuth(ctx, res.User, res.AccessToken, res.RefreshToken); err != nil {
		return err
	}

	s.navigator.Navigate(navigation.RouteDashboard)

	return nil
}

// Logout forgets the session locally. The server is not told; refresh
// tokens simply expire.
func (s *Service) Logout(ctx context.Context) error {

	var errs []error

	if err := s.sessions.Logout(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.accounts.ClearActiveAccount(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.client.InvalidateCache(ctx); err != nil {
		errs = append(errs, err)
	}

	s.navigator.Navigate(navigation.RouteLogin)

	return errors.Join(errs...)
}

func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.sessions.IsAuthenticated(ctx)
}

// CurrentUser returns the signed in user, or nil.
func (s *Service) CurrentUser(ctx context.Context) *models.User {
	session, err := s.sessions.Session(ctx)
	if err != nil {
		logrus.WithError(err).Warnln("Failed to read session")
		return nil
	}
	return session.User
}
