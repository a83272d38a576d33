package domain

import "time"

// UserRole controls which dashboard areas a user may reach.
type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleManager    UserRole = "MANAGER"
	UserRoleFieldAgent UserRole = "FIELD_AGENT"
	UserRoleLandlord   UserRole = "LANDLORD"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleFieldAgent, UserRoleLandlord:
		return true
	}
	return false
}

// UserStatus represents lifecycle states for a dashboard account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// User is a dashboard account. Presence is tracked through IsOnline and LastSeen.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	IsOnline     bool
	LastSeen     *time.Time
	AgentID      *string
	LandlordID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
