package service

import (
	"context"
	"strings"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/repository"
	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

// PropertyService manages property listings.
type PropertyService struct {
	properties repository.PropertyRepository
	landlords  repository.LandlordRepository
}

// PropertyDependencies encapsulates repositories required for listings.
type PropertyDependencies struct {
	PropertyRepo repository.PropertyRepository
	LandlordRepo repository.LandlordRepository
}

// PropertyInput describes a full property payload.
type PropertyInput struct {
	LandlordID  *string
	Title       string
	Description string
	Address     string
	City        string
	Price       float64
	Status      domain.PropertyStatus
	Bedrooms    int
	Bathrooms   int
	Images      []string
	Amenities   []string
}

// PropertyPatch carries a partial update.
type PropertyPatch struct {
	LandlordID  *string
	Title       *string
	Description *string
	Address     *string
	City        *string
	Price       *float64
	Status      *domain.PropertyStatus
	Bedrooms    *int
	Bathrooms   *int
	Images      *[]string
	Amenities   *[]string
}

// PropertyListFilters define listing parameters.
type PropertyListFilters struct {
	Status     *domain.PropertyStatus
	LandlordID *string
	City       string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Limit      int
	Offset     int
}

// NewPropertyService constructs the service.
func NewPropertyService(deps PropertyDependencies) *PropertyService {
	return &PropertyService{properties: deps.PropertyRepo, landlords: deps.LandlordRepo}
}

// Create adds a listing. Status defaults to FOR_RENT.
func (s *PropertyService) Create(ctx context.Context, input PropertyInput) (*domain.Property, error) {
	property := &domain.Property{
		LandlordID:  input.LandlordID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Address:     strings.TrimSpace(input.Address),
		City:        strings.TrimSpace(input.City),
		Price:       input.Price,
		Status:      input.Status,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Images:      cleanList(input.Images),
		Amenities:   cleanList(input.Amenities),
	}
	if property.Status == "" {
		property.Status = domain.PropertyStatusForRent
	}
	if err := s.validate(ctx, property); err != nil {
		return nil, err
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, apperrors.MapError(err)
	}
	return property, nil
}

// Get fetches a listing.
func (s *PropertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("property", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return property, nil
}

// List returns listings with the total count.
func (s *PropertyService) List(ctx context.Context, filters PropertyListFilters) ([]domain.Property, int, error) {
	if filters.Status != nil && !filters.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid status", map[string]any{"status": *filters.Status})
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MinPrice > *filters.MaxPrice {
		return nil, 0, apperrors.NewValidationError("min_price must not exceed max_price", nil)
	}
	items, total, err := s.properties.List(ctx, repository.PropertyFilter{
		Status:     filters.Status,
		LandlordID: filters.LandlordID,
		City:       filters.City,
		MinPrice:   filters.MinPrice,
		MaxPrice:   filters.MaxPrice,
		Search:     filters.Search,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// Update applies a partial update. A non-nil Images replaces the gallery.
func (s *PropertyService) Update(ctx context.Context, id string, patch PropertyPatch) (*domain.Property, error) {
	property, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.LandlordID != nil {
		if *patch.LandlordID == "" {
			property.LandlordID = nil
		} else {
			property.LandlordID = patch.LandlordID
		}
	}
	if patch.Title != nil {
		property.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		property.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Address != nil {
		property.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.City != nil {
		property.City = strings.TrimSpace(*patch.City)
	}
	if patch.Price != nil {
		property.Price = *patch.Price
	}
	if patch.Status != nil {
		property.Status = *patch.Status
	}
	if patch.Bedrooms != nil {
		property.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		property.Bathrooms = *patch.Bathrooms
	}
	if patch.Images != nil {
		property.Images = cleanList(*patch.Images)
	}
	if patch.Amenities != nil {
		property.Amenities = cleanList(*patch.Amenities)
	}

	if err := s.validate(ctx, property); err != nil {
		return nil, err
	}
	if err := s.properties.Update(ctx, property); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("property", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return property, nil
}

// Delete removes a listing together with its payments, applications and images.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	if err := s.properties.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("property", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *PropertyService) validate(ctx context.Context, property *domain.Property) error {
	details := map[string]any{}
	if property.Title == "" {
		details["title"] = "required"
	}
	if property.Price < 0 {
		details["price"] = "must not be negative"
	}
	if property.Bedrooms < 0 {
		details["bedrooms"] = "must not be negative"
	}
	if property.Bathrooms < 0 {
		details["bathrooms"] = "must not be negative"
	}
	if !property.Status.Valid() {
		details["status"] = "must be one of FOR_RENT, FOR_SALE, RENTED, SOLD"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid property", details)
	}

	if property.LandlordID == nil || s.landlords == nil {
		return nil
	}
	if _, err := s.landlords.GetByID(ctx, *property.LandlordID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("landlord does not exist", map[string]any{"landlord_id": *property.LandlordID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
