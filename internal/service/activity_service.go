package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

const (
	DefaultOfflineThreshold = 5 * time.Minute
	DefaultRetentionDays    = 7
)

// PresenceGate rate-limits presence writes per user.
type PresenceGate interface {
	Allow(ctx context.Context, userID string) bool
	Reset(ctx context.Context, userID string)
}

// ActivityService records user activity and maintains online presence.
type ActivityService struct {
	activities repository.ActivityRepository
	presence   repository.PresenceRepository
	gate       PresenceGate
	logger     *zap.Logger
	now        func() time.Time
}

// ActivityDependencies bundles collaborators for the activity service.
type ActivityDependencies struct {
	ActivityRepo repository.ActivityRepository
	PresenceRepo repository.PresenceRepository
	// Gate is optional; without it every Touch writes.
	Gate   PresenceGate
	Logger *zap.Logger
}

// ActivityEntry describes one tracked action.
type ActivityEntry struct {
	UserID      string
	Action      domain.ActivityAction
	Description string
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
}

// ActivityListFilters define activity log listing parameters.
type ActivityListFilters struct {
	UserID *string
	Action *domain.ActivityAction
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// NewActivityService constructs the service.
func NewActivityService(deps ActivityDependencies) *ActivityService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		activities: deps.ActivityRepo,
		presence:   deps.PresenceRepo,
		gate:       deps.Gate,
		logger:     logger.Named("activity"),
		now:        time.Now,
	}
}

// Record appends an activity row. Tracking must never break the request it
// describes, so failures are only logged.
func (s *ActivityService) Record(ctx context.Context, entry ActivityEntry) {
	if entry.UserID == "" {
		return
	}
	if !entry.Action.Valid() {
		s.logger.Warn("dropping activity with unknown action",
			zap.String("user_id", entry.UserID), zap.String("action", string(entry.Action)))
		return
	}

	activity := &domain.UserActivity{
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		Metadata:    entry.Metadata,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("user_id", entry.UserID),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}

// Heartbeat marks the user online now.
func (s *ActivityService) Heartbeat(ctx context.Context, userID string) error {
	if err := s.presence.SetPresence(ctx, userID, true, s.now().UTC()); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Touch is the throttled heartbeat used on every authenticated request.
func (s *ActivityService) Touch(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if s.gate != nil && !s.gate.Allow(ctx, userID) {
		return
	}
	if err := s.presence.SetPresence(ctx, userID, true, s.now().UTC()); err != nil {
		s.logger.Warn("failed to refresh presence", zap.String("user_id", userID), zap.Error(err))
	}
}

// MarkOffline marks the user offline now. It writes no activity row.
func (s *ActivityService) MarkOffline(ctx context.Context, userID string) error {
	if err := s.presence.SetPresence(ctx, userID, false, s.now().UTC()); err != nil {
		return apperrors.MapError(err)
	}
	if s.gate != nil {
		s.gate.Reset(ctx, userID)
	}
	return nil
}

// SweepInactive marks offline every online user not seen within threshold.
func (s *ActivityService) SweepInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	if threshold <= 0 {
		threshold = DefaultOfflineThreshold
	}
	cutoff := s.now().UTC().Add(-threshold)
	affected, err := s.presence.MarkStaleOffline(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.logger.Info("marked inactive users offline", zap.Int64("count", affected), zap.Time("cutoff", cutoff))
	}
	return affected, nil
}

// SweepOldLogs deletes activity rows older than retentionDays.
func (s *ActivityService) SweepOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := s.activities.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("deleted old activity logs", zap.Int64("count", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// List returns activity rows newest first with the total count.
func (s *ActivityService) List(ctx context.Context, filters ActivityListFilters) ([]domain.UserActivity, int, error) {
	if filters.Action != nil && !filters.Action.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid action", map[string]any{"action": *filters.Action})
	}
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, 0, apperrors.NewValidationError("to must not be before from", nil)
	}
	items, total, err := s.activities.List(ctx, repository.ActivityFilter{
		UserID: filters.UserID,
		Action: filters.Action,
		From:   filters.From,
		To:     filters.To,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// OnlineCount reports how many users are currently online.
func (s *ActivityService) OnlineCount(ctx context.Context) (int, error) {
	count, err := s.presence.CountOnline(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}
