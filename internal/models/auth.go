package models

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest is the body of POST /auth/register. ConfirmPassword only
// exists for form validation and is never sent to the server.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"-" label:"confirm_password" validate:"required,eqfield=Password"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (a *AuthResponse) GetTokens() TokenPair {
	return TokenPair{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
	}
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the rotated pair. The old refresh token must not
// be reused once this has been received.
type RefreshResponse = TokenPair

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t TokenPair) IsComplete() bool {
	return len(t.AccessToken) > 0 && len(t.RefreshToken) > 0
}
