package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	accountIDKey = "account_id"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorBody{Message: message})
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) == 0 {
			abort(c, http.StatusUnauthorized, "authorization header required")
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || len(token) == 0 {
			abort(c, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		s.mu.Lock()
		userID, valid := s.accessTokens[token]
		valid = valid && !s.denyAccess
		s.mu.Unlock()

		if !valid {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (s *Server) accountMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader(HeaderAccountID)
		if len(accountID) == 0 {
			abort(c, http.StatusBadRequest, "X-Account-ID header is required")
			return
		}

		s.mu.Lock()
		_, found := s.findAccountLocked(c.GetString(userIDKey), accountID)
		s.mu.Unlock()

		if !found {
			abort(c, http.StatusForbidden, "account does not exist or does not belong to you")
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, found := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	if !found || u.password != req.Password {
		abort(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.respondAuthLocked(c, http.StatusOK, "login successful", u.User)
}

func (s *Server) register(c *gin.Context) {

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Email) == 0 || len(req.Password) < 8 || len(req.Name) == 0 {
		abort(c, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[strings.ToLower(strings.TrimSpace(req.Email))]; exists {
		abort(c, http.StatusConflict, "email already registered")
		return
	}

	u := s.addUserLocked(req.Name, req.Email, req.Password)

	s.respondAuthLocked(c, http.StatusCreated, "user registered successfully", u)
}

func (s *Server) respondAuthLocked(c *gin.Context, status int, message string, u models.User) {
	pair, err := s.issueLocked(u)
	if err != nil {
		abort(c, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	c.JSON(status, models.AuthResponse{
		Message:      message,
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) refresh(c *gin.Context) {

	s.mu.Lock()
	s.refreshCalls++
	delay := s.refreshDelay
	fail := s.refreshFail > 0
	if fail {
		s.refreshFail--
	}
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if fail {
		abort(c, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.RefreshToken) == 0 {
		abort(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, valid := s.refreshTokens[req.RefreshToken]
	if !valid {
		abort(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	u, found := s.userByIDLocked(userID)
	if !found {
		u = models.User{ID: userID}
	}

	// Refresh tokens are single use.
	delete(s.refreshTokens, req.RefreshToken)

	pair, err := s.issueLocked(u)
	if err != nil {
		abort(c, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (s *Server) listAccounts(c *gin.Context) {
	s.mu.Lock()
	accounts := append([]models.Account{}, s.accounts[c.GetString(userIDKey)]...)
	s.mu.Unlock()

	c.JSON(http.StatusOK, models.AccountList{
		Accounts: accounts,
		Count:    len(accounts),
	})
}

func (s *Server) getAccount(c *gin.Context) {
	s.mu.Lock()
	account, found := s.findAccountLocked(c.GetString(userIDKey), c.Param("id"))
	s.mu.Unlock()

	if !found {
		abort(c, http.StatusNotFound, "account not found")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) createAccount(c *gin.Context) {

	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Name) == 0 {
		abort(c, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	account := s.addAccountLocked(c.GetString(userIDKey), req.Name, req.Type, req.Currency)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, account)
}

func (s *Server) dashboardSummary(c *gin.Context) {
	period := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))

	c.JSON(http.StatusOK, gin.H{
		"account_id":              c.GetString(accountIDKey),
		"period":                  period,
		"primary_currency":        "ARS",
		"total_income":            0,
		"total_expenses":          0,
		"total_assigned_to_goals": 0,
		"available_balance":       0,
		"expenses_by_category":    []any{},
		"top_expenses":            []any{},
		"recent_transactions":     []any{},
	})
}

func (s *Server) listEmpty(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			field:   []any{},
			"count": 0,
		})
	}
}

func (s *Server) accepted(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"message": "created"})
}
