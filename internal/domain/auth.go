package domain

import "time"

// AccessToken describes an issued JWT.
type AccessToken struct {
	Token     string
	UserID    string
	Role      UserRole
	ExpiresAt time.Time
}
