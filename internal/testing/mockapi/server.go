// Package mockapi is an in-process stand-in for the Bolsillo Claro API. It
// issues real JWTs, rotates refresh tokens, enforces the account header and
// records every call so tests can assert on what the client sent.
package mockapi

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	BasePath = "/api"

	HeaderAccountID = "X-Account-ID"
)

type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
}

// Authorization returns the bearer token the call carried, if any.
func (c Call) Authorization() string {
	return c.Header.Get("Authorization")
}

type user struct {
	models.User
	password string
}

type Server struct {
	engine *gin.Engine
	secret []byte

	mu sync.Mutex

	users         map[string]*user // by email
	accounts      map[string][]models.Account
	accessTokens  map[string]string // token -> user id
	refreshTokens map[string]string // token -> user id
	queued        []models.TokenPair

	calls        []Call
	refreshCalls int
	refreshDelay time.Duration
	refreshFail  int
	denyAccess   bool

	limiter *RateLimiter
}

type Option func(*Server)

// WithAuthRateLimit throttles the /auth routes the way the real API does.
func WithAuthRateLimit(rate float64, burst int) Option {
	return func(s *Server) {
		s.limiter = NewRateLimiter(rate, burst)
	}
}

func WithSecret(secret string) Option {
	return func(s *Server) {
		s.secret = []byte(secret)
	}
}

func New(opts ...Option) *Server {

	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:        []byte("bolsillo-test-secret"),
		users:         map[string]*user{},
		accounts:      map[string][]models.Account{},
		accessTokens:  map[string]string{},
		refreshTokens: map[string]string{},
	}

	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logrus.WithField("panic", err).Errorln("Recovered from panic")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			HeaderAccountID,
		},
	}))
	router.Use(s.recordMiddleware())

	s.setupRoutes(router)
	s.engine = router

	return s
}

func (s *Server) setupRoutes(router *gin.Engine) {

	api := router.Group(BasePath)

	authRoutes := api.Group("/auth")
	if s.limiter != nil {
		authRoutes.Use(s.limiter.Middleware())
	}
	{
		authRoutes.POST("/login", s.login)
		authRoutes.POST("/register", s.register)
		authRoutes.POST("/refresh", s.refresh)
	}

	protected := api.Group("")
	protected.Use(s.authMiddleware())
	{
		protected.GET("/accounts", s.listAccounts)
		protected.POST("/accounts", s.createAccount)
		protected.GET("/accounts/:id", s.getAccount)

		scoped := protected.Group("")
		scoped.Use(s.accountMiddleware())
		{
			scoped.GET("/dashboard/summary", s.dashboardSummary)
			scoped.GET("/expenses", s.listEmpty("expenses"))
			scoped.GET("/incomes", s.listEmpty("incomes"))
			scoped.GET("/savings-goals", s.listEmpty("goals"))
			scoped.POST("/expenses", s.accepted)
		}
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves the API on a local listener; URL is the base to give a client.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.engine)
}

// URL joins the listener address with the API base path.
func URL(ts *httptest.Server) string {
	return ts.URL + BasePath
}

func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Header: c.Request.Header.Clone(),
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the calls made to path, relative to the API base.
func (s *Server) CallsTo(method string, path string) []Call {
	var out []Call
	for _, call := range s.Calls() {
		if call.Method == method && call.Path == BasePath+path {
			out = append(out, call)
		}
	}
	return out
}

func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.refreshCalls = 0
}

// SetRefreshDelay holds every refresh response for d, so concurrent
// callers can pile up behind one refresh.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// FailRefreshes makes the next n refresh calls answer 500.
func (s *Server) FailRefreshes(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshFail = n
}

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = map[string]string{}
}

// DenyAccess makes every protected route answer 401 regardless of token.
func (s *Server) DenyAccess(deny bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denyAccess = deny
}

func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = map[string]string{}
}

// QueueTokens makes the next logins, registrations and refreshes hand out
// these literal pairs, in order, instead of freshly signed tokens.
func (s *Server) QueueTokens(pairs ...models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = append(s.queued, pairs...)
}

// Grant registers an existing pair as valid for userID.
func (s *Server) Grant(userID string, pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(pair.AccessToken) > 0 {
		s.accessTokens[pair.AccessToken] = userID
	}
	if len(pair.RefreshToken) > 0 {
		s.refreshTokens[pair.RefreshToken] = userID
	}
}
