package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSessions bool

func (f fakeSessions) IsAuthenticated(context.Context) bool {
	return bool(f)
}

func TestGuard_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		route         Route
		expected      Route
		redirected    bool
	}{
		{"protected route without session", false, RouteDashboard, RouteLogin, true},
		{"protected route with session", true, RouteDashboard, RouteDashboard, false},
		{"login is public", false, RouteLogin, RouteLogin, false},
		{"register is public", false, RouteRegister, RouteRegister, false},
		{"unknown routes are protected", false, Route("/reports"), RouteLogin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &Recorder{}
			guard := NewGuard(fakeSessions(tt.authenticated), recorder)

			assert.Equal(t, tt.expected, guard.Resolve(context.Background(), tt.route))
			assert.Equal(t, !tt.redirected, guard.Allow(context.Background(), tt.route))

			if tt.redirected {
				assert.Equal(t, RouteLogin, recorder.Last())
			} else {
				assert.Empty(t, recorder.History())
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	recorder := &Recorder{}
	assert.Equal(t, Route(""), recorder.Last())

	recorder.Navigate(RouteLogin)
	recorder.Navigate(RouteDashboard)

	assert.Equal(t, RouteDashboard, recorder.Last())
	assert.Equal(t, []Route{RouteLogin, RouteDashboard}, recorder.History())
}

func TestNilNavigatorDiscards(t *testing.T) {
	guard := NewGuard(fakeSessions(false), nil)
	assert.Equal(t, RouteLogin, guard.Resolve(context.Background(), RouteAccounts))
}
