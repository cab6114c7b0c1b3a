package resources

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bolsillo-claro/cli/internal/cache"
	"github.com/bolsillo-claro/cli/internal/client"
	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/sessions"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/bolsillo-claro/cli/internal/testing/mockapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*mockapi.Server, *client.Client, *sessions.AccountStore, models.User) {
	t.Helper()
	ctx := context.Background()

	api := mockapi.New()
	server := api.Start()
	t.Cleanup(server.Close)

	mem := storage.NewMemoryStorage()
	store := sessions.NewStore(mem)
	accounts := sessions.NewAccountStore(mem)

	c, err := client.New(client.Options{
		BaseURL:  mockapi.URL(server),
		Timeout:  5 * time.Second,
		Storage:  mem,
		Sessions: store,
		Accounts: accounts,
		Cache:    cache.NewMemory(cache.DefaultConfig()),
	})
	require.NoError(t, err)

	u := api.AddUser("Ana", "ana@example.com", "password123")
	api.Grant(u.ID, models.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"})
	require.NoError(t, store.SetAuth(ctx, u, "AT1", "RT1"))

	return api, c, accounts, u
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	api, c, _, _ := setup(t)
	accounts := NewAccounts(c)

	list, err := accounts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)

	created, err := accounts.Create(ctx, models.CreateAccountRequest{
		Name:     " Casa ",
		Type:     models.AccountTypeFamily,
		Currency: models.CurrencyARS,
	})
	require.NoError(t, err)
	assert.Equal(t, "Casa", created.Name)
	assert.NotEmpty(t, created.ID)

	found, err := accounts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	list, err = accounts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	assert.Len(t, api.CallsTo(http.MethodGet, EndpointAccounts), 2)
}

func TestAccounts_CreateValidates(t *testing.T) {
	api, c, _, _ := setup(t)

	_, err := NewAccounts(c).Create(context.Background(), models.CreateAccountRequest{
		Name:     "Casa",
		Type:     "shared",
		Currency: models.CurrencyARS,
	})
	require.Error(t, err)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.True(t, validationErr.Has("type"))
	assert.Empty(t, api.CallsTo(http.MethodPost, EndpointAccounts))
}

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	api, c, accounts, u := setup(t)

	account := api.AddAccount(u.ID, "Casa", models.AccountTypeFamily, models.CurrencyARS)
	require.NoError(t, accounts.SetActiveAccount(ctx, account))

	summary, err := NewDashboard(c).Summary(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-03", summary.Period)
	assert.Equal(t, "ARS", summary.PrimaryCurrency)
}

func TestDashboardSummary_RequiresAccount(t *testing.T) {
	_, c, _, _ := setup(t)

	_, err := NewDashboard(c).Summary(context.Background(), "")
	require.Error(t, err)

	var responseErr *client.ResponseError
	require.ErrorAs(t, err, &responseErr)
	assert.Equal(t, http.StatusBadRequest, responseErr.StatusCode)
	assert.Equal(t, "X-Account-ID header is required", client.UserMessage(err))
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	_, c, _, _ := setup(t)

	res, err := Fetch(ctx, c, "accounts", nil, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accounts":[],"count":0}`, string(res.Body))

	res, err = Fetch(ctx, c, "accounts", nil, false)
	require.NoError(t, err)
	assert.True(t, res.Cached)

	res, err = Fetch(ctx, c, "accounts", nil, true)
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestResolveEndpoint(t *testing.T) {
	assert.Equal(t, EndpointDashboardSummary, ResolveEndpoint("dashboard"))
	assert.Equal(t, EndpointSavingsGoals, ResolveEndpoint("Savings-Goals"))
	assert.Equal(t, "/accounts/123", ResolveEndpoint("accounts/123"))
	assert.Equal(t, "/custom", ResolveEndpoint("/custom"))
	assert.Contains(t, EndpointNames(), "income-categories")
}
