package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bolsillo-claro/cli/internal/cache"
	"github.com/bolsillo-claro/cli/internal/navigation"
	"github.com/bolsillo-claro/cli/internal/sessions"
	"github.com/bolsillo-claro/cli/internal/storage"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	HeaderAccountID = "X-Account-ID"

	DefaultTimeout = 10 * time.Second
)

type Options struct {
	BaseURL string
	Timeout time.Duration

	Storage  storage.Storage
	Sessions *sessions.Store
	Accounts *sessions.AccountStore

	// Cache is optional; responses are not cached when nil.
	Cache cache.Cache
	// Navigator receives the redirect to the login route when a session
	// cannot be recovered. Optional.
	Navigator navigation.Navigator
	// HTTPClient replaces the default transport, mostly for tests.
	HTTPClient *http.Client
}

// Client is the single way the application talks to the API. Every request
// goes through the same ordered stages that attach credentials, and a 401 is
// answered at most once with a token refresh and a replay.
type Client struct {
	rest      *resty.Client
	refresher *Refresher

	storage   storage.Storage
	sessions  *sessions.Store
	accounts  *sessions.AccountStore
	cache     cache.Cache
	navigator navigation.Navigator
}

func New(opts Options) (*Client, error) {

	if len(opts.BaseURL) == 0 {
		return nil, errors.New("base url is required")
	}
	if opts.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if opts.Sessions == nil || opts.Accounts == nil {
		return nil, errors.New("session and account stores are required")
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.Navigator == nil {
		opts.Navigator = navigation.Discard
	}

	c := &Client{
		rest:      newRestClient(opts),
		storage:   opts.Storage,
		sessions:  opts.Sessions,
		accounts:  opts.Accounts,
		cache:     opts.Cache,
		navigator: opts.Navigator,
	}

	for _, stage := range c.stages() {
		c.rest.OnBeforeRequest(stage)
	}

	// The refresh call gets its own client so it is never intercepted.
	c.refresher = NewRefresher(newRestClient(opts), opts.Storage, opts.Sessions)
	c.refresher.OnFailure(c.expire)

	return c, nil
}

func newRestClient(opts Options) *resty.Client {
	var rest *resty.Client
	if opts.HTTPClient != nil {
		rest = resty.NewWithClient(opts.HTTPClient)
	} else {
		rest = resty.New()
	}

	return rest.
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(logrus.StandardLogger())
}

// stages are run in order before every request on the instrumented client.
func (c *Client) stages() []resty.RequestMiddleware {
	return []resty.RequestMiddleware{
		c.bearerStage,
		c.accountStage,
	}
}

func (c *Client) bearerStage(_ *resty.Client, r *resty.Request) error {
	// A replay arrives with the refreshed token already set.
	if len(r.Token) > 0 {
		return nil
	}
	if token := storage.GetString(r.Context(), c.storage, storage.KeyAccessToken); len(token) > 0 {
		r.SetAuthToken(token)
	}
	return nil
}

func (c *Client) accountStage(_ *resty.Client, r *resty.Request) error {
	if IsAuthEndpoint(r.URL) {
		r.Header.Del(HeaderAccountID)
		return nil
	}
	if accountID := storage.GetString(r.Context(), c.storage, storage.KeyActiveAccountID); len(accountID) > 0 {
		r.SetHeader(HeaderAccountID, accountID)
	}
	return nil
}

func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// InvalidateCache drops every cached response.
func (c *Client) InvalidateCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// Do sends req and returns the response when the status is 2xx. Any other
// outcome is an error: *TransportError when nothing came back, otherwise a
// *ResponseError carrying the server's status and body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {

	if len(req.ID) == 0 {
		req.ID = uuid.NewString()
	}
	if len(req.Method) == 0 {
		req.Method = http.MethodGet
	}

	log := logrus.WithFields(logrus.Fields{
		"request": req.ID,
		"method":  req.Method,
		"path":    req.Path,
	})

	cacheKey := ""
	if req.isRead() && !req.NoCache {
		cacheKey = req.cacheKey(c.accounts.ActiveAccountID(ctx))
		if body, found, err := c.cache.Get(ctx, cacheKey); err != nil {
			log.WithError(err).Warnln("Failed to read response cache")
		} else if found {
			log.Debugln("Serving response from cache")
			return &Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       body,
				Cached:     true,
			}, nil
		}
	}

	res, err := c.execute(ctx, req, "")
	if err != nil {
		log.WithError(err).Debugln("Request failed")
		return nil, err
	}

	log.WithField("status", res.StatusCode).Debugln("Received response")

	if res.StatusCode == http.StatusUnauthorized && recoverable(req.Path) {
		res, err = c.recover(ctx, req, res)
		if err != nil {
			return nil, err
		}
	} else if !res.IsSuccess() {
		return nil, newResponseError(req, res, RecoveryNone, nil)
	}

	if req.isRead() {
		if len(cacheKey) > 0 {
			if err := c.cache.Set(ctx, cacheKey, res.Body); err != nil {
				log.WithError(err).Warnln("Failed to store response in cache")
			}
		}
	} else if err := c.cache.Clear(ctx); err != nil {
		log.WithError(err).Warnln("Failed to clear response cache")
	}

	return res, nil
}

// recover refreshes the token pair and replays req exactly once. The replay's
// outcome is final.
func (c *Client) recover(ctx context.Context, req *Request, failed *Response) (*Response, error) {

	log := logrus.WithFields(logrus.Fields{
		"request": req.ID,
		"path":    req.Path,
	})

	tokens, err := c.refresher.Refresh(ctx, failed.token)
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up waiting; that says nothing about the session.
			return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
		}
		// The session was already ended by the refresh flight or by a logout.
		return nil, newResponseError(req, failed, RecoveryFailed, err)
	}

	log.Debugln("Replaying request with refreshed token")

	replay, err := c.execute(ctx, req, tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	replay.Retried = true

	if !replay.IsSuccess() {
		recovery := RecoveryNone
		if replay.StatusCode == http.StatusUnauthorized {
			recovery = RecoveryExhausted
		}
		return nil, newResponseError(req, replay, recovery, nil)
	}

	return replay, nil
}

// expire ends a session that can no longer be refreshed. The Refresher calls
// it once per failed flight.
func (c *Client) expire(ctx context.Context, cause error) {

	logrus.WithError(cause).Infoln("Session could not be refreshed, logging out")

	ctx = context.WithoutCancel(ctx)

	if err := c.sessions.Logout(ctx); err != nil {
		logrus.WithError(err).Errorln("Failed to clear session")
	}
	if err := c.accounts.ClearActiveAccount(ctx); err != nil {
		logrus.WithError(err).Errorln("Failed to clear active account")
	}
	if err := c.cache.Clear(ctx); err != nil {
		logrus.WithError(err).Errorln("Failed to clear response cache")
	}

	c.navigator.Navigate(navigation.RouteLogin)
}

func (c *Client) execute(ctx context.Context, req *Request, token string) (*Response, error) {

	r := c.rest.R().SetContext(ctx)

	if req.Body != nil {
		r.SetBody(req.Body)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	for key, values := range req.Header {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}
	if len(token) > 0 {
		r.SetAuthToken(token)
	}

	res, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, &TransportError{
			Method: req.Method,
			Path:   req.Path,
			Err:    err,
		}
	}

	return &Response{
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.Body(),
		token:      r.Token,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.send(ctx, NewRequest(http.MethodGet, path), out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.send(ctx, NewRequest(http.MethodPost, path).WithBody(body), out)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any) error {
	return c.send(ctx, NewRequest(http.MethodPut, path).WithBody(body), out)
}

func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.send(ctx, NewRequest(http.MethodPatch, path).WithBody(body), out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.send(ctx, NewRequest(http.MethodDelete, path), nil)
}

func (c *Client) send(ctx context.Context, req *Request, out any) error {
	res, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return res.Decode(out)
}
