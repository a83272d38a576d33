package dto

import (
	"time"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/notify"
)

// CreateLandlordRequest payload for admin create and public registration.
type CreateLandlordRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	Address     string `json:"address"`
}

// UpdateLandlordRequest is a partial update; absent fields are untouched.
type UpdateLandlordRequest struct {
	Name            *string                `json:"name"`
	Email           *string                `json:"email"`
	Phone           *string                `json:"phone"`
	CompanyName     *string                `json:"companyName"`
	Address         *string                `json:"address"`
	IsVerified      *bool                  `json:"isVerified"`
	Status          *domain.LandlordStatus `json:"status"`
	RejectionReason *string                `json:"rejectionReason"`
	InactiveReason  *string                `json:"inactiveReason"`
}

// VerifyLandlordRequest payload. IsVerified is decoded loosely so a
// non-boolean value is reported as a validation error instead of a parse error.
type VerifyLandlordRequest struct {
	IsVerified      any     `json:"isVerified"`
	RejectionReason *string `json:"rejectionReason"`
	Password        string  `json:"password"`
}

// UpdateLandlordStatusRequest payload.
type UpdateLandlordStatusRequest struct {
	Status         domain.LandlordStatus `json:"status"`
	InactiveReason *string               `json:"inactiveReason"`
}

// LandlordResponse represents a landlord.
type LandlordResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone"`
	CompanyName     string                `json:"companyName"`
	Address         string                `json:"address"`
	IsVerified      bool                  `json:"isVerified"`
	RejectionReason *string               `json:"rejectionReason"`
	Status          domain.LandlordStatus `json:"status"`
	InactiveReason  *string               `json:"inactiveReason"`
	IsSentEmail     bool                  `json:"isSentEmail"`
	IsSentAt        *time.Time            `json:"isSentAt"`
	CreatedByID     *string               `json:"createdById"`
	PropertyCount   int                   `json:"propertyCount"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// NotificationResponse reports a notification outcome.
type NotificationResponse struct {
	Kind   notify.Kind `json:"kind"`
	Sent   bool        `json:"sent"`
	Reason string      `json:"reason,omitempty"`
}

// NewLandlordResponse maps the domain model.
func NewLandlordResponse(l *domain.Landlord) LandlordResponse {
	return LandlordResponse{
		ID:              l.ID,
		Name:            l.Name,
		Email:           l.Email,
		Phone:           l.Phone,
		CompanyName:     l.CompanyName,
		Address:         l.Address,
		IsVerified:      l.IsVerified,
		RejectionReason: l.RejectionReason,
		Status:          l.Status,
		InactiveReason:  l.InactiveReason,
		IsSentEmail:     l.IsSentEmail,
		IsSentAt:        l.IsSentAt,
		CreatedByID:     l.CreatedByID,
		PropertyCount:   l.PropertyCount,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// NewNotificationResponses maps notification outcomes.
func NewNotificationResponses(outcomes []notify.Outcome) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, NotificationResponse{Kind: o.Kind, Sent: o.Sent, Reason: o.Reason})
	}
	return out
}
