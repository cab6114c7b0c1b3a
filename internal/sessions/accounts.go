package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/sirupsen/logrus"
)

// AccountStore is the persisted active-account selection. It lives apart
// from the session: login never restores it.
type AccountStore struct {
	storage storage.Storage
	notify  *broadcaster[models.ActiveAccountSelection]
}

func NewAccountStore(s storage.Storage) *AccountStore {
	return &AccountStore{
		storage: s,
		notify:  newBroadcaster[models.ActiveAccountSelection](),
	}
}

// SetActiveAccount selects account. Any account is accepted as-is.
func (a *AccountStore) SetActiveAccount(ctx context.Context, account models.Account) error {
	selection := models.ActiveAccountSelection{
		AccountID: account.ID,
		Account:   &account,
	}

	snapshot, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("failed to encode account selection: %w", err)
	}

	err = a.storage.Update(ctx, map[string]string{
		storage.KeyActiveAccountID: account.ID,
		storage.KeyAccountSnapshot: string(snapshot),
	})
	if err != nil {
		return fmt.Errorf("failed to store active account: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account": account.ID,
	}).Debugln("Active account selected")

	a.notify.publish(selection)
	return nil
}

func (a *AccountStore) ClearActiveAccount(ctx context.Context) error {
	err := a.storage.Update(ctx, nil,
		storage.KeyActiveAccountID,
		storage.KeyAccountSnapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to clear active account: %w", err)
	}

	a.notify.publish(models.ActiveAccountSelection{})
	return nil
}

// Active returns the current selection, empty when none is stored.
func (a *AccountStore) Active(ctx context.Context) (models.ActiveAccountSelection, error) {
	raw, ok, err := a.storage.Get(ctx, storage.KeyAccountSnapshot)
	if err != nil {
		return models.ActiveAccountSelection{}, fmt.Errorf("failed to read active account: %w", err)
	}
	if !ok || len(raw) == 0 {
		return models.ActiveAccountSelection{}, nil
	}

	var selection models.ActiveAccountSelection
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		logrus.WithError(err).Warnln("Discarding unreadable account snapshot")
		return models.ActiveAccountSelection{}, nil
	}

	return selection, nil
}

func (a *AccountStore) ActiveAccountID(ctx context.Context) string {
	return storage.GetString(ctx, a.storage, storage.KeyActiveAccountID)
}

func (a *AccountStore) Subscribe(fn func(models.ActiveAccountSelection)) func() {
	return a.notify.subscribe(fn)
}
