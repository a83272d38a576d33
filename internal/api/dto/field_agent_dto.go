package dto

import (
	"time"

	"github.com/estatehub/estate-service/internal/domain"
)

// FieldAgentRequest payload for create.
type FieldAgentRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Region string `json:"region"`
}

// UpdateFieldAgentRequest is a partial update.
type UpdateFieldAgentRequest struct {
	Name   *string            `json:"name"`
	Email  *string            `json:"email"`
	Phone  *string            `json:"phone"`
	Region *string            `json:"region"`
	Status *domain.UserStatus `json:"status"`
}

// FieldAgentResponse represents an agent.
type FieldAgentResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Region    string            `json:"region"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewFieldAgentResponse maps the domain model.
func NewFieldAgentResponse(a *domain.FieldAgent) FieldAgentResponse {
	return FieldAgentResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Region:    a.Region,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
