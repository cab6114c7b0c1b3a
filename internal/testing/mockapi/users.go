package mockapi

import (
	"strings"
	"time"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/google/uuid"
)

// AddUser registers a user that can log in with password.
func (s *Server) AddUser(name string, email string, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name string, email string, password string) models.User {
	u := &user{
		User: models.User{
			ID:        uuid.NewString(),
			Email:     strings.ToLower(strings.TrimSpace(email)),
			Name:      name,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
		password: password,
	}
	s.users[u.Email] = u
	return u.User
}

// AddAccount stores an account for userID and returns it with its id set.
func (s *Server) AddAccount(userID string, name string, accountType models.AccountType, currency models.Currency) models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(userID, name, accountType, currency)
}

func (s *Server) addAccountLocked(userID string, name string, accountType models.AccountType, currency models.Currency) models.Account {
	now := time.Now().UTC().Format(time.RFC3339)
	account := models.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      accountType,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[userID] = append(s.accounts[userID], account)
	return account
}

func (s *Server) findAccountLocked(userID string, id string) (models.Account, bool) {
	for _, account := range s.accounts[userID] {
		if account.ID == id {
			return account, true
		}
	}
	return models.Account{}, false
}
