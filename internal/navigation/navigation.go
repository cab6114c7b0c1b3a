// Package navigation names the views of the application and decides which
// of them an unauthenticated user may enter.
package navigation

import (
	"context"
	"sync"
)

type Route string

const (
	RouteLogin        Route = "/login"
	RouteRegister     Route = "/register"
	RouteDashboard    Route = "/dashboard"
	RouteAccounts     Route = "/accounts"
	RouteExpenses     Route = "/expenses"
	RouteIncomes      Route = "/incomes"
	RouteSavingsGoals Route = "/savings-goals"
	RouteSettings     Route = "/settings"
)

var publicRoutes = map[Route]struct{}{
	RouteLogin:    {},
	RouteRegister: {},
}

// IsProtected reports whether route needs an authenticated session.
func IsProtected(route Route) bool {
	_, public := publicRoutes[route]
	return !public
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(route Route) {
	f(route)
}

// Discard ignores every navigation.
var Discard Navigator = NavigatorFunc(func(Route) {})

// Recorder keeps every navigation it receives.
type Recorder struct {
	mu      sync.Mutex
	history []Route
}

func (r *Recorder) Navigate(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, route)
}

// Last returns the latest route, or "" if nothing navigated yet.
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}

func (r *Recorder) History() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.history...)
}

// SessionChecker is the part of the session store the guard reads.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// Guard keeps unauthenticated users out of protected views.
type Guard struct {
	sessions  SessionChecker
	navigator Navigator
}

func NewGuard(sessions SessionChecker, navigator Navigator) *Guard {
	if navigator == nil {
		navigator = Discard
	}
	return &Guard{
		sessions:  sessions,
		navigator: navigator,
	}
}

// Resolve returns the route to render. A protected route requested without
// a session redirects to the login entry point instead.
func (g *Guard) Resolve(ctx context.Context, route Route) Route {
	if !IsProtected(route) || g.sessions.IsAuthenticated(ctx) {
		return route
	}
	g.navigator.Navigate(RouteLogin)
	return RouteLogin
}

// Allow reports whether route may be rendered as requested.
func (g *Guard) Allow(ctx context.Context, route Route) bool {
	return g.Resolve(ctx, route) == route
}
