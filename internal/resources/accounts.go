package resources

import (
	"context"
	"net/url"

	"github.com/bolsillo-claro/cli/internal/client"
	"github.com/bolsillo-claro/cli/internal/models"
)

type Accounts struct {
	client *client.Client
}

func NewAccounts(c *client.Client) *Accounts {
	return &Accounts{client: c}
}

func (a *Accounts) List(ctx context.Context) (*models.AccountList, error) {
	var list models.AccountList
	if err := a.client.Get(ctx, EndpointAccounts, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (a *Accounts) Get(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := a.client.Get(ctx, EndpointAccounts+"/"+url.PathEscape(id), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Create validates req locally before sending it.
func (a *Accounts) Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var account models.Account
	if err := a.client.Post(ctx, EndpointAccounts, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}
