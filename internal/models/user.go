package models

// User mirrors the identity record owned by the backend. The client never
// mutates it; it is stored as returned by login or register.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (u *User) GetName() string {
	if u == nil {
		return "Unknown"
	}
	if len(u.Name) > 0 {
		return u.Name
	} else if len(u.Email) > 0 {
		return u.Email
	} else if len(u.ID) > 0 {
		return u.ID
	}
	return "Unknown"
}
