package dto

import (
	"time"

	"github.com/estatehub/estate-service/internal/domain"
)

// ActivityResponse represents an activity log row.
type ActivityResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"userId"`
	Action      domain.ActivityAction `json:"action"`
	Description string                `json:"description"`
	Metadata    map[string]any        `json:"metadata"`
	IPAddress   string                `json:"ipAddress"`
	UserAgent   string                `json:"userAgent"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// NewActivityResponse maps the domain model.
func NewActivityResponse(a *domain.UserActivity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Action:      a.Action,
		Description: a.Description,
		Metadata:    a.Metadata,
		IPAddress:   a.IPAddress,
		UserAgent:   a.UserAgent,
		CreatedAt:   a.CreatedAt,
	}
}
