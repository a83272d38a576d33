package service

import (
	"context"
	"errors"
	"strings"

	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/config"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

const minPasswordLength = 8

// UserService manages dashboard accounts.
type UserService struct {
	users      repository.UserRepository
	landlords  repository.LandlordRepository
	bcryptCost int
}

// UserDependencies encapsulates repositories required for account management.
type UserDependencies struct {
	UserRepo     repository.UserRepository
	LandlordRepo repository.LandlordRepository
}

// UserCreateInput describes account creation payload.
type UserCreateInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.UserRole
	AgentID    *string
	LandlordID *string
}

// UserPatch carries a partial update. A non-empty Password is rehashed.
type UserPatch struct {
	Name       *string
	Email      *string
	Password   *string
	Role       *domain.UserRole
	Status     *domain.UserStatus
	AgentID    *string
	LandlordID *string
}

// UserListFilters define listing parameters.
type UserListFilters struct {
	Role     *domain.UserRole
	Status   *domain.UserStatus
	IsOnline *bool
	Search   string
	Limit    int
	Offset   int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		landlords:  deps.LandlordRepo,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Create adds an account with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if !looksLikeEmail(email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": input.Email})
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if err := s.ensureEmailAvailable(ctx, email, "", input.LandlordID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       domain.UserStatusActive,
		AgentID:      input.AgentID,
		LandlordID:   input.LandlordID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapWriteError(err, email)
	}
	return user, nil
}

// Get fetches an account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns accounts with the total count.
func (s *UserService) List(ctx context.Context, filters UserListFilters) ([]domain.User, int, error) {
	if filters.Role != nil && !filters.Role.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid role", map[string]any{"role": *filters.Role})
	}
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid status", map[string]any{"status": *filters.Status})
	}
	items, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     filters.Role,
		Status:   filters.Status,
		IsOnline: filters.IsOnline,
		Search:   filters.Search,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// Online lists users currently marked online.
func (s *UserService) Online(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	online := true
	return s.List(ctx, UserListFilters{IsOnline: &online, Limit: limit, Offset: offset})
}

// Update applies a partial update.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if patch.LandlordID != nil {
		user.LandlordID = emptyToNil(*patch.LandlordID)
	}
	if patch.AgentID != nil {
		user.AgentID = emptyToNil(*patch.AgentID)
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if !looksLikeEmail(email) {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": *patch.Email})
		}
		if email != user.Email {
			if err := s.ensureEmailAvailable(ctx, email, user.ID, user.LandlordID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *patch.Role})
		}
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
		}
		user.Status = *patch.Status
	}
	if patch.Password != nil && *patch.Password != "" {
		if len(*patch.Password) < minPasswordLength {
			return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
		}
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapWriteError(err, user.Email)
	}
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor != nil && actor.ID == id {
		return apperrors.NewValidationError("cannot delete own account", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ensureEmailAvailable enforces email uniqueness across users and landlords.
// The landlord record the account belongs to may share its email.
func (s *UserService) ensureEmailAvailable(ctx context.Context, email, userID string, landlordID *string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != userID:
		return emailTaken(email)
	case err != nil && !apperrors.IsNotFound(err):
		return apperrors.MapError(err)
	}

	if s.landlords == nil {
		return nil
	}
	landlord, err := s.landlords.GetByEmail(ctx, email)
	switch {
	case err == nil && (landlordID == nil || landlord.ID != *landlordID):
		return emailTaken(email)
	case err != nil && !apperrors.IsNotFound(err):
		return apperrors.MapError(err)
	}
	return nil
}

func mapWriteError(err error, email string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return emailTaken(email)
	}
	if errors.Is(err, repository.ErrHasDependents) {
		return apperrors.NewValidationError("referenced record does not exist", nil)
	}
	return apperrors.MapError(err)
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
