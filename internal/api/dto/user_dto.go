package dto

import (
	"time"

	"github.com/estatehub/estate-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateUserRequest payload for new dashboard accounts.
type CreateUserRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Role       domain.UserRole `json:"role"`
	AgentID    *string         `json:"agentId"`
	LandlordID *string         `json:"landlordId"`
}

// UpdateUserRequest is a partial update.
type UpdateUserRequest struct {
	Name       *string            `json:"name"`
	Email      *string            `json:"email"`
	Password   *string            `json:"password"`
	Role       *domain.UserRole   `json:"role"`
	Status     *domain.UserStatus `json:"status"`
	AgentID    *string            `json:"agentId"`
	LandlordID *string            `json:"landlordId"`
}

// UserResponse represents an account without credentials.
type UserResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Role       domain.UserRole   `json:"role"`
	Status     domain.UserStatus `json:"status"`
	IsOnline   bool              `json:"isOnline"`
	LastSeen   *time.Time        `json:"lastSeen"`
	AgentID    *string           `json:"agentId"`
	LandlordID *string           `json:"landlordId"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// NewUserResponse maps the domain model.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Status:     u.Status,
		IsOnline:   u.IsOnline,
		LastSeen:   u.LastSeen,
		AgentID:    u.AgentID,
		LandlordID: u.LandlordID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
