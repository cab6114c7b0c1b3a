package mockapi

import (
	"fmt"
	"time"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type Claims struct {
	Email string `json:"email"`
	Kind  string `json:"kind"`
	jwt.RegisteredClaims
}

// issueLocked hands out the next queued pair, or signs a new one, and
// records it as valid for u.
func (s *Server) issueLocked(u models.User) (models.TokenPair, error) {

	var pair models.TokenPair

	if len(s.queued) > 0 {
		pair = s.queued[0]
		s.queued = s.queued[1:]
	} else {
		access, err := s.sign(u, "access", AccessTokenTTL)
		if err != nil {
			return models.TokenPair{}, err
		}
		refresh, err := s.sign(u, "refresh", RefreshTokenTTL)
		if err != nil {
			return models.TokenPair{}, err
		}
		pair = models.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
		}
	}

	s.accessTokens[pair.AccessToken] = u.ID
	s.refreshTokens[pair.RefreshToken] = u.ID

	return pair, nil
}

func (s *Server) sign(u models.User, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: u.Email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return token, nil
}

func (s *Server) userByIDLocked(id string) (models.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u.User, true
		}
	}
	return models.User{}, false
}
