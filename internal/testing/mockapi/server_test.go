package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method string, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, BasePath+path, &payload)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		req.Header[key] = values
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestLoginAndRefreshRotation(t *testing.T) {
	s := New()
	s.AddUser("Ana", "ana@example.com", "password123")

	w := do(t, s, http.MethodPost, "/auth/login", models.LoginRequest{Email: "ana@example.com", Password: "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	assert.Equal(t, "ana@example.com", auth.User.Email)
	require.True(t, auth.GetTokens().IsComplete())

	w = do(t, s, http.MethodGet, "/accounts", nil, bearer(auth.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodPost, "/auth/refresh", models.RefreshRequest{RefreshToken: auth.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.RefreshCalls())

	// the old refresh token is spent
	w = do(t, s, http.MethodPost, "/auth/refresh", models.RefreshRequest{RefreshToken: auth.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := New()
	s.AddUser("Ana", "ana@example.com", "password123")

	w := do(t, s, http.MethodPost, "/auth/login", models.LoginRequest{Email: "ana@example.com", Password: "nope-nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid email or password", body.Message)
}

func TestQueuedTokens(t *testing.T) {
	s := New()
	s.AddUser("Ana", "ana@example.com", "password123")
	s.QueueTokens(models.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"})

	w := do(t, s, http.MethodPost, "/auth/login", models.LoginRequest{Email: "ana@example.com", Password: "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	assert.Equal(t, "AT1", auth.AccessToken)
	assert.Equal(t, "RT1", auth.RefreshToken)

	s.ExpireAccessTokens()
	w = do(t, s, http.MethodGet, "/accounts", nil, bearer("AT1"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountHeaderRequired(t *testing.T) {
	s := New()
	u := s.AddUser("Ana", "ana@example.com", "password123")
	account := s.AddAccount(u.ID, "Casa", models.AccountTypeFamily, models.CurrencyARS)
	s.Grant(u.ID, models.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"})

	w := do(t, s, http.MethodGet, "/dashboard/summary", nil, bearer("AT1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	header := bearer("AT1")
	header.Set(HeaderAccountID, account.ID)
	w = do(t, s, http.MethodGet, "/dashboard/summary", nil, header)
	assert.Equal(t, http.StatusOK, w.Code)

	calls := s.CallsTo(http.MethodGet, "/dashboard/summary")
	require.Len(t, calls, 2)
	assert.Equal(t, account.ID, calls[1].Header.Get(HeaderAccountID))
	assert.Equal(t, "Bearer AT1", calls[1].Authorization())
}

func TestAuthRateLimit(t *testing.T) {
	s := New(WithAuthRateLimit(0, 1))

	w := do(t, s, http.MethodPost, "/auth/login", models.LoginRequest{Email: "x@example.com", Password: "password123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodPost, "/auth/login", models.LoginRequest{Email: "x@example.com", Password: "password123"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
