package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Password holds the bcrypt digest, never the plain text.
// It has no JSON tags; serialize PublicUser instead.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the sanitized view of a User returned to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// Public strips the digest and bookkeeping fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Nickname: u.Nickname,
	}
}
