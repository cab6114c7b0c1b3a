package models

// Session is the client side view of who is logged in. It is persisted as a
// single snapshot so that a restarted process sees exactly what was written.
type Session struct {
	User            *User  `json:"user"`
	AccessToken     string `json:"accessToken,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// HasCredentials reports whether every field SetAuth writes is present.
func (s Session) HasCredentials() bool {
	return s.User != nil && len(s.AccessToken) > 0 && len(s.RefreshToken) > 0
}

// ActiveAccountSelection is the account that scopes data requests.
type ActiveAccountSelection struct {
	AccountID string   `json:"activeAccountId,omitempty"`
	Account   *Account `json:"activeAccount"`
}

func (a ActiveAccountSelection) IsSet() bool {
	return len(a.AccountID) > 0
}
