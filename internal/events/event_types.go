package events

import (
	"time"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/notify"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLandlordCreated       EventType = "landlord_created"
	EventLandlordVerified      EventType = "landlord_verified"
	EventLandlordRejected      EventType = "landlord_rejected"
	EventLandlordStatusChanged EventType = "landlord_status_changed"
	EventLandlordDeleted       EventType = "landlord_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	LandlordID string      `json:"landlord_id"`
	ActorID    *string     `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// VerificationChangedPayload accompanies landlord_verified and landlord_rejected.
type VerificationChangedPayload struct {
	IsVerified      bool                  `json:"is_verified"`
	Status          domain.LandlordStatus `json:"status"`
	RejectionReason *string               `json:"rejection_reason,omitempty"`
	Notification    *notify.Outcome       `json:"notification,omitempty"`
}

// StatusChangedPayload accompanies landlord_status_changed.
type StatusChangedPayload struct {
	OldStatus      domain.LandlordStatus `json:"old_status"`
	NewStatus      domain.LandlordStatus `json:"new_status"`
	InactiveReason *string               `json:"inactive_reason,omitempty"`
	Notification   *notify.Outcome       `json:"notification,omitempty"`
}
