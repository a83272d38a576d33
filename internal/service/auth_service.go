package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/config"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

// ClientInfo identifies where a request came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService coordinates login, logout and presence endpoints.
type AuthService struct {
	users     repository.UserRepository
	landlords repository.LandlordRepository
	activity  *ActivityService
	tokenMgr  *auth.TokenManager
	logger    *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	LandlordRepo repository.LandlordRepository
	Activity     *ActivityService
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     deps.UserRepo,
		landlords: deps.LandlordRepo,
		activity:  deps.Activity,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:    logger.Named("auth"),
	}
}

// Login authenticates a dashboard user, records LOGIN and marks them online.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*domain.User, domain.AccessToken, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.AccessToken{}, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			auth.CompareDummy(password)
			return nil, domain.AccessToken{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, domain.AccessToken{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.AccessToken{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.AccessToken{}, apperrors.NewForbidden("account inactive")
	}
	if err := s.checkLandlordAccess(ctx, user); err != nil {
		return nil, domain.AccessToken{}, err
	}

	token, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, domain.AccessToken{}, apperrors.NewInternalError(err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      user.ID,
		Action:      domain.ActionLogin,
		Description: "User logged in",
		Metadata:    map[string]any{"role": string(user.Role)},
		IPAddress:   client.IPAddress,
		UserAgent:   client.UserAgent,
	})
	if err := s.activity.Heartbeat(ctx, user.ID); err != nil {
		s.logger.Warn("failed to mark user online", zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, token, nil
}

// Logout records LOGOUT and marks the user offline. Tokens are stateless.
func (s *AuthService) Logout(ctx context.Context, user *domain.User, client ClientInfo) error {
	s.activity.Record(ctx, ActivityEntry{
		UserID:      user.ID,
		Action:      domain.ActionLogout,
		Description: "User logged out",
		IPAddress:   client.IPAddress,
		UserAgent:   client.UserAgent,
	})
	return s.activity.MarkOffline(ctx, user.ID)
}

// Offline handles the tab-close beacon: presence only, no activity row.
func (s *AuthService) Offline(ctx context.Context, user *domain.User) error {
	return s.activity.MarkOffline(ctx, user.ID)
}

// Heartbeat marks the caller online.
func (s *AuthService) Heartbeat(ctx context.Context, user *domain.User) error {
	return s.activity.Heartbeat(ctx, user.ID)
}

// Me reloads the caller so presence fields are fresh.
func (s *AuthService) Me(ctx context.Context, user *domain.User) (*domain.User, error) {
	fresh, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	return fresh, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// checkLandlordAccess blocks landlord accounts whose landlord record is INACTIVE.
func (s *AuthService) checkLandlordAccess(ctx context.Context, user *domain.User) error {
	if user.Role != domain.UserRoleLandlord || user.LandlordID == nil || s.landlords == nil {
		return nil
	}
	landlord, err := s.landlords.GetByID(ctx, *user.LandlordID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if landlord.Status == domain.LandlordStatusInactive {
		reason := strings.TrimSpace(deref(landlord.InactiveReason))
		return apperrors.NewDomainError(apperrors.CodeForbidden, "landlord account is inactive", 403,
			map[string]any{"reason": reason})
	}
	return nil
}
