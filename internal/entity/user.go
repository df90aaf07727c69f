package entity

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account entity. Password always holds the bcrypt hash;
// the plaintext never leaves the signup/login requests.
type User struct {
	ID               string
	Username         string
	Email            string
	Password         string
	Role             string
	IsVerified       bool
	VerificationCode string
	Bookmarks        []string
	Likes            []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
