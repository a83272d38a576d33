package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/events"
	"github.com/estatehub/estate-service/internal/notify"
)

// AuditService writes a structured audit trail of landlord lifecycle events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLandlordCreated, a.handleLandlordEvent)
	a.dispatcher.Subscribe(events.EventLandlordVerified, a.handleVerificationChanged)
	a.dispatcher.Subscribe(events.EventLandlordRejected, a.handleVerificationChanged)
	a.dispatcher.Subscribe(events.EventLandlordStatusChanged, a.handleStatusChanged)
	a.dispatcher.Subscribe(events.EventLandlordDeleted, a.handleLandlordEvent)
}

func (a *AuditService) handleLandlordEvent(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), baseFields(event)...)
	return nil
}

func (a *AuditService) handleVerificationChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VerificationChangedPayload)
	if !ok {
		a.logger.Warn("unexpected payload", baseFields(event)...)
		return nil
	}
	fields := append(baseFields(event),
		zap.Bool("is_verified", payload.IsVerified),
		zap.String("status", string(payload.Status)))
	if payload.RejectionReason != nil {
		fields = append(fields, zap.String("rejection_reason", *payload.RejectionReason))
	}
	a.log(event, payload.Notification, fields)
	return nil
}

func (a *AuditService) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		a.logger.Warn("unexpected payload", baseFields(event)...)
		return nil
	}
	fields := append(baseFields(event),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	if payload.InactiveReason != nil {
		fields = append(fields, zap.String("inactive_reason", *payload.InactiveReason))
	}
	a.log(event, payload.Notification, fields)
	return nil
}

func (a *AuditService) log(event events.Event, outcome *notify.Outcome, fields []zap.Field) {
	if outcome == nil {
		a.logger.Info(string(event.Type), fields...)
		return
	}
	fields = append(fields, zap.Stringer("notification", *outcome))
	if !outcome.Sent {
		a.logger.Warn(string(event.Type), fields...)
		return
	}
	a.logger.Info(string(event.Type), fields...)
}

func baseFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("landlord_id", event.LandlordID),
		zap.Time("at", event.Timestamp),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", *event.ActorID))
	}
	return fields
}
