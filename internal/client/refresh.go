package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/bolsillo-claro/cli/internal/sessions"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type RefreshState int

const (
	StateIdle RefreshState = iota
	StateRefreshInFlight
	StateFailed
)

func (s RefreshState) String() string {
	switch s {
	case StateRefreshInFlight:
		return "refresh-in-flight"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Refresher exchanges the stored refresh token for a new pair. Concurrent
// callers holding the same stale access token share one network call, and a
// caller whose token was already rotated by someone else gets the stored pair
// back without touching the network.
type Refresher struct {
	rest     *resty.Client
	storage  storage.Storage
	sessions *sessions.Store

	group singleflight.Group

	// lock serialises refreshes so a late caller re-reads storage after the
	// previous rotation instead of replaying a spent refresh token.
	lock sync.Mutex

	stateLock sync.RWMutex
	state     RefreshState

	// onFailure runs once per failed flight, while lock is still held.
	onFailure func(ctx context.Context, err error)
}

// NewRefresher takes a resty client with no request hooks attached; the
// refresh call must never be intercepted or recovered.
func NewRefresher(rest *resty.Client, s storage.Storage, store *sessions.Store) *Refresher {
	return &Refresher{
		rest:     rest,
		storage:  s,
		sessions: store,
	}
}

// OnFailure registers fn to run when a refresh flight fails. It is called
// once per flight no matter how many callers share it. A session that was
// logged out or replaced during the flight is not a failure.
func (r *Refresher) OnFailure(fn func(ctx context.Context, err error)) {
	r.onFailure = fn
}

func (r *Refresher) State() RefreshState {
	r.stateLock.RLock()
	defer r.stateLock.RUnlock()
	return r.state
}

func (r *Refresher) setState(state RefreshState) {
	r.stateLock.Lock()
	defer r.stateLock.Unlock()
	r.state = state
}

// Refresh returns a usable token pair for a request that was rejected while
// carrying staleToken. The caller's ctx only bounds its own wait.
func (r *Refresher) Refresh(ctx context.Context, staleToken string) (models.TokenPair, error) {

	ch := r.group.DoChan(staleToken, func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx), staleToken)
	})

	select {
	case <-ctx.Done():
		return models.TokenPair{}, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return models.TokenPair{}, result.Err
		}
		return result.Val.(models.TokenPair), nil
	}
}

func (r *Refresher) refresh(ctx context.Context, staleToken string) (models.TokenPair, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	current := storage.GetString(ctx, r.storage, storage.KeyAccessToken)
	refreshToken := storage.GetString(ctx, r.storage, storage.KeyRefreshToken)

	if current != staleToken {
		if len(current) == 0 {
			// logged out since the request was sent
			return models.TokenPair{}, sessions.ErrSessionChanged
		}
		logrus.Debugln("Access token already rotated, reusing stored pair")
		return models.TokenPair{
			AccessToken:  current,
			RefreshToken: refreshToken,
		}, nil
	}

	if len(refreshToken) == 0 {
		return models.TokenPair{}, r.fail(ctx, ErrNoRefreshToken)
	}

	r.setState(StateRefreshInFlight)

	tokens, err := r.exchange(ctx, refreshToken)
	if err != nil {
		logrus.WithError(err).Warnln("Failed to refresh access token")
		return models.TokenPair{}, r.fail(ctx, err)
	}

	if err := r.sessions.RotateTokens(ctx, refreshToken, tokens.AccessToken, tokens.RefreshToken); err != nil {
		if errors.Is(err, sessions.ErrSessionChanged) {
			logrus.Debugln("Session changed during refresh, discarding new tokens")
			r.setState(StateIdle)
			return models.TokenPair{}, err
		}
		return models.TokenPair{}, r.fail(ctx, fmt.Errorf("failed to persist refreshed tokens: %w", err))
	}

	r.setState(StateIdle)
	logrus.Debugln("Access token refreshed")

	return tokens, nil
}

func (r *Refresher) fail(ctx context.Context, err error) error {
	r.setState(StateFailed)
	if r.onFailure != nil {
		r.onFailure(ctx, err)
	}
	return err
}

func (r *Refresher) exchange(ctx context.Context, refreshToken string) (models.TokenPair, error) {

	req := NewRequest(http.MethodPost, EndpointRefresh).
		WithBody(models.RefreshRequest{RefreshToken: refreshToken})

	res, err := r.rest.R().
		SetContext(ctx).
		SetBody(req.Body).
		Execute(req.Method, req.Path)

	if err != nil {
		return models.TokenPair{}, &TransportError{
			Method: req.Method,
			Path:   req.Path,
			Err:    err,
		}
	}

	if !res.IsSuccess() {
		return models.TokenPair{}, newResponseError(req, &Response{
			StatusCode: res.StatusCode(),
			Header:     res.Header(),
			Body:       res.Body(),
		}, RecoveryNone, nil)
	}

	var tokens models.RefreshResponse
	if err := json.Unmarshal(res.Body(), &tokens); err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to decode refresh response: %w", err)
	}

	if !tokens.IsComplete() {
		return models.TokenPair{}, errors.New("refresh response is missing tokens")
	}

	return tokens, nil
}
