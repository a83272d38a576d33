package service

import (
	"context"
	"strings"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

// FieldAgentService manages field agents.
type FieldAgentService struct {
	agents repository.FieldAgentRepository
}

// FieldAgentInput describes agent creation payload.
type FieldAgentInput struct {
	Name   string
	Email  string
	Phone  string
	Region string
}

// FieldAgentPatch carries a partial update.
type FieldAgentPatch struct {
	Name   *string
	Email  *string
	Phone  *string
	Region *string
	Status *domain.UserStatus
}

// FieldAgentListFilters define listing parameters.
type FieldAgentListFilters struct {
	Status *domain.UserStatus
	Region string
	Limit  int
	Offset int
}

// NewFieldAgentService constructs the service.
func NewFieldAgentService(agents repository.FieldAgentRepository) *FieldAgentService {
	return &FieldAgentService{agents: agents}
}

// Create adds an ACTIVE agent.
func (s *FieldAgentService) Create(ctx context.Context, input FieldAgentInput) (*domain.FieldAgent, error) {
	agent := &domain.FieldAgent{
		Name:   strings.TrimSpace(input.Name),
		Email:  normalizeEmail(input.Email),
		Phone:  strings.TrimSpace(input.Phone),
		Region: strings.TrimSpace(input.Region),
		Status: domain.UserStatusActive,
	}
	if agent.Name == "" || agent.Email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if !looksLikeEmail(agent.Email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": input.Email})
	}
	if err := s.ensureEmailAvailable(ctx, agent.Email, ""); err != nil {
		return nil, err
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, mapWriteError(err, agent.Email)
	}
	return agent, nil
}

// Get fetches an agent.
func (s *FieldAgentService) Get(ctx context.Context, id string) (*domain.FieldAgent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("field agent", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// List returns agents.
func (s *FieldAgentService) List(ctx context.Context, filters FieldAgentListFilters) ([]domain.FieldAgent, error) {
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *filters.Status})
	}
	items, err := s.agents.List(ctx, repository.FieldAgentFilter{
		Status: filters.Status,
		Region: strings.TrimSpace(filters.Region),
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// Update applies a partial update.
func (s *FieldAgentService) Update(ctx context.Context, id string, patch FieldAgentPatch) (*domain.FieldAgent, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		agent.Name = name
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if !looksLikeEmail(email) {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": *patch.Email})
		}
		if email != agent.Email {
			if err := s.ensureEmailAvailable(ctx, email, agent.ID); err != nil {
				return nil, err
			}
		}
		agent.Email = email
	}
	if patch.Phone != nil {
		agent.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Region != nil {
		agent.Region = strings.TrimSpace(*patch.Region)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
		}
		agent.Status = *patch.Status
	}
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, mapWriteError(err, agent.Email)
	}
	return agent, nil
}

// Delete removes an agent. Linked user accounts keep existing without the link.
func (s *FieldAgentService) Delete(ctx context.Context, id string) error {
	if err := s.agents.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("field agent", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *FieldAgentService) ensureEmailAvailable(ctx context.Context, email, agentID string) error {
	existing, err := s.agents.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != agentID:
		return emailTaken(email)
	case err != nil && !apperrors.IsNotFound(err):
		return apperrors.MapError(err)
	}
	return nil
}
