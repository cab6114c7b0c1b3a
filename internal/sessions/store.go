// Package sessions holds the persisted session and active-account stores.
//
// Neither store keeps its own copy of the state: every read goes to the
// durable storage and every write lands there in a single atomic update, so
// the stores, their snapshots and the raw keys read by the HTTP client can
// never disagree.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrSessionChanged is returned by RotateTokens when the session the refresh
// started from was logged out or replaced in the meantime.
var ErrSessionChanged = errors.New("session changed during token refresh")

// Store is the persisted auth session.
type Store struct {
	// serialises mutations; RotateTokens checks and writes under it
	mu      sync.Mutex
	storage storage.Storage
	notify  *broadcaster[models.Session]
}

func NewStore(s storage.Storage) *Store {
	return &Store{
		storage: s,
		notify:  newBroadcaster[models.Session](),
	}
}

// SetAuth stores the user and token pair and marks the session
// authenticated. Token shape is not checked.
func (s *Store) SetAuth(ctx context.Context, user models.User, accessToken string, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := models.Session{
		User:            &user,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		IsAuthenticated: true,
	}

	encodedUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	snapshot, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = s.storage.Update(ctx, map[string]string{
		storage.KeyAccessToken:  accessToken,
		storage.KeyRefreshToken: refreshToken,
		storage.KeyUser:         string(encodedUser),
		storage.KeyAuthSnapshot: string(snapshot),
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user": user.ID,
	}).Debugln("Session established")

	s.notify.publish(session)
	return nil
}

// SetTokens replaces the token pair after a refresh. The user and
// IsAuthenticated are left exactly as they were: a refresh must never turn a
// logged out session back into an authenticated one, so calling this
// without a prior SetAuth leaves IsAuthenticated false.
func (s *Store) SetTokens(ctx context.Context, accessToken string, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setTokensLocked(ctx, accessToken, refreshToken)
}

// RotateTokens stores the pair obtained by exchanging previousRefreshToken.
// Nothing is written, and ErrSessionChanged is returned, when the stored
// refresh token is no longer previousRefreshToken.
func (s *Store) RotateTokens(ctx context.Context, previousRefreshToken string, accessToken string, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.storage.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to read refresh token: %w", err)
	}
	if len(previousRefreshToken) == 0 || current != previousRefreshToken {
		return ErrSessionChanged
	}

	return s.setTokensLocked(ctx, accessToken, refreshToken)
}

func (s *Store) setTokensLocked(ctx context.Context, accessToken string, refreshToken string) error {
	session, err := s.Session(ctx)
	if err != nil {
		return err
	}

	session.AccessToken = accessToken
	session.RefreshToken = refreshToken

	snapshot, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = s.storage.Update(ctx, map[string]string{
		storage.KeyAccessToken:  accessToken,
		storage.KeyRefreshToken: refreshToken,
		storage.KeyAuthSnapshot: string(snapshot),
	})
	if err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	s.notify.publish(session)
	return nil
}

// Logout drops the session locally. No request is sent to the server.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.storage.Update(ctx, nil,
		storage.KeyAccessToken,
		storage.KeyRefreshToken,
		storage.KeyUser,
		storage.KeyAuthSnapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	logrus.Debugln("Session cleared")

	s.notify.publish(models.Session{})
	return nil
}

// Session rehydrates the session from its snapshot. A missing snapshot is an
// empty, unauthenticated session.
func (s *Store) Session(ctx context.Context) (models.Session, error) {
	raw, ok, err := s.storage.Get(ctx, storage.KeyAuthSnapshot)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || len(raw) == 0 {
		return models.Session{}, nil
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		logrus.WithError(err).Warnln("Discarding unreadable session snapshot")
		return models.Session{}, nil
	}

	return session, nil
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	session, err := s.Session(ctx)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to read session state")
		return false
	}
	return session.IsAuthenticated
}

func (s *Store) AccessToken(ctx context.Context) string {
	return storage.GetString(ctx, s.storage, storage.KeyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) string {
	return storage.GetString(ctx, s.storage, storage.KeyRefreshToken)
}

// Subscribe registers fn to receive the session after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(models.Session)) func() {
	return s.notify.subscribe(fn)
}

type broadcaster[T any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(T)
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{
		listeners: make(map[int]func(T)),
	}
}

func (b *broadcaster[T]) subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *broadcaster[T]) publish(value T) {
	b.mu.RLock()
	listeners := make([]func(T), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(value)
	}
}
