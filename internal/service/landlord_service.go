package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/events"
	"github.com/estatehub/estate-service/internal/notify"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

const (
	// maxWriteAttempts bounds the reload-and-replan loop on version conflicts.
	maxWriteAttempts = 3
	notifyTimeout    = 15 * time.Second
)

// NotificationRecorder counts notification outcomes.
type NotificationRecorder interface {
	RecordNotification(kind string, sent bool)
}

// LandlordService manages landlord records and their verification/status lifecycle.
type LandlordService struct {
	landlords  repository.LandlordRepository
	properties repository.PropertyRepository
	users      repository.UserRepository
	notifier   notify.Notifier
	dispatcher events.Dispatcher
	recorder   NotificationRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// LandlordDependencies bundles collaborators for the landlord service.
type LandlordDependencies struct {
	LandlordRepo repository.LandlordRepository
	PropertyRepo repository.PropertyRepository
	UserRepo     repository.UserRepository
	Notifier     notify.Notifier
	Dispatcher   events.Dispatcher
	Recorder     NotificationRecorder
	Logger       *zap.Logger
}

// LandlordCreateInput describes landlord creation payload.
type LandlordCreateInput struct {
	Name        string
	Email       string
	Phone       string
	CompanyName string
	Address     string
}

// VerifyInput carries a verification decision. IsVerified is required.
type VerifyInput struct {
	IsVerified      *bool
	RejectionReason *string
	Password        string
}

// StatusInput carries a status change.
type StatusInput struct {
	Status         domain.LandlordStatus
	InactiveReason *string
}

// LandlordListFilters define listing parameters.
type LandlordListFilters struct {
	IsVerified *bool
	Status     *domain.LandlordStatus
	Search     string
	Limit      int
	Offset     int
}

// LandlordResult is the outcome of a lifecycle operation.
type LandlordResult struct {
	Landlord      *domain.Landlord
	Message       string
	Notifications []notify.Outcome
}

// NewLandlordService constructs the service.
func NewLandlordService(deps LandlordDependencies) *LandlordService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &LandlordService{
		landlords:  deps.LandlordRepo,
		properties: deps.PropertyRepo,
		users:      deps.UserRepo,
		notifier:   deps.Notifier,
		dispatcher: dispatcher,
		recorder:   deps.Recorder,
		logger:     logger.Named("landlords"),
		now:        time.Now,
	}
}

// Create registers a landlord. New landlords start unverified and ACTIVE.
func (s *LandlordService) Create(ctx context.Context, actor *domain.User, input LandlordCreateInput) (*domain.Landlord, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if !looksLikeEmail(email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": input.Email})
	}
	if err := s.ensureEmailAvailable(ctx, email, ""); err != nil {
		return nil, err
	}

	landlord := &domain.Landlord{
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(input.Phone),
		CompanyName: strings.TrimSpace(input.CompanyName),
		Address:     strings.TrimSpace(input.Address),
		IsVerified:  false,
		Status:      domain.LandlordStatusActive,
	}
	if actor != nil {
		landlord.CreatedByID = &actor.ID
	}
	if err := s.landlords.Create(ctx, landlord); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, emailTaken(email)
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.EventLandlordCreated, landlord.ID, nil)
	return landlord, nil
}

// Get fetches a landlord.
func (s *LandlordService) Get(ctx context.Context, id string) (*domain.Landlord, error) {
	landlord, err := s.landlords.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("landlord", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return landlord, nil
}

// List returns landlords with the total count for pagination.
func (s *LandlordService) List(ctx context.Context, filters LandlordListFilters) ([]domain.Landlord, int, error) {
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid status", map[string]any{"status": *filters.Status})
	}
	items, total, err := s.landlords.List(ctx, repository.LandlordFilter{
		IsVerified: filters.IsVerified,
		Status:     filters.Status,
		Search:     filters.Search,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// Verify approves or rejects a landlord. Approval forces status ACTIVE.
func (s *LandlordService) Verify(ctx context.Context, actor *domain.User, id string, input VerifyInput) (*LandlordResult, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.IsVerified == nil {
		return nil, apperrors.NewValidationError("isVerified must be a boolean", nil)
	}

	patch := domain.LandlordPatch{
		IsVerified:      input.IsVerified,
		RejectionReason: input.RejectionReason,
	}
	result, err := s.apply(ctx, actor, before, patch, input.Password)
	if err != nil {
		return nil, err
	}
	if *input.IsVerified {
		result.Message = "Landlord verified successfully"
	} else {
		result.Message = "Landlord unverified successfully"
	}
	return result, nil
}

// UpdateStatus activates or deactivates a landlord.
func (s *LandlordService) UpdateStatus(ctx context.Context, actor *domain.User, id string, input StatusInput) (*LandlordResult, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("status must be ACTIVE or INACTIVE", map[string]any{"status": input.Status})
	}

	status := input.Status
	patch := domain.LandlordPatch{
		Status:         &status,
		InactiveReason: input.InactiveReason,
	}
	result, err := s.apply(ctx, actor, before, patch, "")
	if err != nil {
		return nil, err
	}
	if status == domain.LandlordStatusActive {
		result.Message = "Landlord activated successfully"
	} else {
		result.Message = "Landlord deactivated successfully"
	}
	return result, nil
}

// Update applies a partial update with the same lifecycle rules as Verify and
// UpdateStatus.
func (s *LandlordService) Update(ctx context.Context, actor *domain.User, id string, patch domain.LandlordPatch) (*LandlordResult, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email != before.Email {
			if err := s.ensureEmailAvailable(ctx, email, before.ID); err != nil {
				return nil, err
			}
		}
	}

	result, err := s.apply(ctx, actor, before, patch, "")
	if err != nil {
		return nil, err
	}
	result.Message = "Landlord updated successfully"
	return result, nil
}

// Delete removes a landlord that owns no properties.
func (s *LandlordService) Delete(ctx context.Context, actor *domain.User, id string) error {
	landlord, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.properties.CountByLandlord(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return hasProperties(id, count)
	}
	if err := s.landlords.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHasDependents) {
			return hasProperties(id, count)
		}
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("landlord", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventLandlordDeleted, landlord.ID, nil)
	return nil
}

// apply writes the planned transition with a version check, replanning from a
// fresh snapshot when another writer got there first. Notifications are sent
// only after the write sticks, and only for edges measured against the row
// actually overwritten.
func (s *LandlordService) apply(ctx context.Context, actor *domain.User, before *domain.Landlord, patch domain.LandlordPatch, password string) (*LandlordResult, error) {
	var planned transition
	for attempt := 1; ; attempt++ {
		planned = planTransition(*before, patch, password)
		after := planned.after

		err := s.landlords.Update(ctx, &after)
		if err == nil {
			planned.after = after
			break
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, emailTaken(after.Email)
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.MapError(err)
		}
		if attempt == maxWriteAttempts {
			s.logger.Warn("landlord update kept losing version race",
				zap.String("landlord_id", before.ID), zap.Int("attempts", attempt))
			return nil, apperrors.NewConflict("landlord was modified concurrently; retry the request", map[string]any{"id": before.ID})
		}
		if before, err = s.Get(ctx, before.ID); err != nil {
			return nil, err
		}
	}

	landlord := planned.after
	result := &LandlordResult{Landlord: &landlord}
	for _, n := range planned.notices {
		result.Notifications = append(result.Notifications, s.deliver(ctx, &landlord, n))
	}

	s.publishTransition(ctx, actor, planned, result.Notifications)
	return result, nil
}

// deliver sends one notification. Failures are logged and counted but never
// returned: the state change already happened and stays.
func (s *LandlordService) deliver(ctx context.Context, landlord *domain.Landlord, n notice) notify.Outcome {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	to := notify.Recipient{LandlordID: landlord.ID, Email: landlord.Email, Name: landlord.Name}

	var outcome notify.Outcome
	switch n.kind {
	case notify.KindApproval:
		outcome = s.notifier.SendApproval(sendCtx, to, n.password)
	case notify.KindRejection:
		outcome = s.notifier.SendRejection(sendCtx, to, n.reason)
	case notify.KindInactive:
		outcome = s.notifier.SendInactive(sendCtx, to, n.reason)
	case notify.KindActivation:
		outcome = s.notifier.SendActivation(sendCtx, to)
	default:
		outcome = notify.Failed(n.kind, errors.New("unknown notification kind"))
	}

	if s.recorder != nil {
		s.recorder.RecordNotification(string(n.kind), outcome.Sent)
	}
	if !outcome.Sent {
		s.logger.Warn("landlord notification failed",
			zap.String("landlord_id", landlord.ID),
			zap.String("kind", string(n.kind)),
			zap.String("reason", outcome.Reason))
		return outcome
	}

	sentAt := s.now().UTC()
	if err := s.landlords.MarkNotified(sendCtx, landlord.ID, sentAt); err != nil {
		s.logger.Warn("failed to record landlord notification",
			zap.String("landlord_id", landlord.ID),
			zap.String("kind", string(n.kind)),
			zap.Error(err))
		return outcome
	}
	landlord.IsSentEmail = true
	landlord.IsSentAt = &sentAt
	return outcome
}

func (s *LandlordService) publishTransition(ctx context.Context, actor *domain.User, t transition, outcomes []notify.Outcome) {
	outcomeFor := func(kind notify.Kind) *notify.Outcome {
		for i := range outcomes {
			if outcomes[i].Kind == kind {
				return &outcomes[i]
			}
		}
		return nil
	}

	switch {
	case t.approved():
		s.publish(ctx, actor, events.EventLandlordVerified, t.after.ID, events.VerificationChangedPayload{
			IsVerified:   true,
			Status:       t.after.Status,
			Notification: outcomeFor(notify.KindApproval),
		})
	case t.rejected():
		s.publish(ctx, actor, events.EventLandlordRejected, t.after.ID, events.VerificationChangedPayload{
			IsVerified:      false,
			Status:          t.after.Status,
			RejectionReason: t.after.RejectionReason,
			Notification:    outcomeFor(notify.KindRejection),
		})
	}

	if t.statusChanged() && !t.approved() {
		kind := notify.KindActivation
		if t.after.Status == domain.LandlordStatusInactive {
			kind = notify.KindInactive
		}
		s.publish(ctx, actor, events.EventLandlordStatusChanged, t.after.ID, events.StatusChangedPayload{
			OldStatus:      t.before.Status,
			NewStatus:      t.after.Status,
			InactiveReason: t.after.InactiveReason,
			Notification:   outcomeFor(kind),
		})
	}
}

func (s *LandlordService) publish(ctx context.Context, actor *domain.User, eventType events.EventType, landlordID string, payload any) {
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		LandlordID: landlordID,
		Timestamp:  s.now().UTC(),
		Payload:    payload,
	}
	if actor != nil {
		event.ActorID = &actor.ID
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// ensureEmailAvailable enforces email uniqueness across landlords and users.
// A user account linked to the landlord itself may share its email.
func (s *LandlordService) ensureEmailAvailable(ctx context.Context, email, landlordID string) error {
	existing, err := s.landlords.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != landlordID:
		return emailTaken(email)
	case err != nil && !apperrors.IsNotFound(err):
		return apperrors.MapError(err)
	}

	if s.users == nil {
		return nil
	}
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && (landlordID == "" || user.LandlordID == nil || *user.LandlordID != landlordID):
		return emailTaken(email)
	case err != nil && !apperrors.IsNotFound(err):
		return apperrors.MapError(err)
	}
	return nil
}

func validatePatch(patch domain.LandlordPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return apperrors.NewValidationError("name cannot be empty", nil)
	}
	if patch.Email != nil && !looksLikeEmail(normalizeEmail(*patch.Email)) {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": *patch.Email})
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return apperrors.NewValidationError("status must be ACTIVE or INACTIVE", map[string]any{"status": *patch.Status})
	}
	return nil
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

func emailTaken(email string) error {
	return apperrors.NewConflict("email already in use", map[string]any{"email": email})
}

func hasProperties(id string, count int) error {
	return apperrors.NewValidationError("cannot delete landlord with existing properties",
		map[string]any{"id": id, "property_count": count})
}
