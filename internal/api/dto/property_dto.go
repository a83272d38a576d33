package dto

import (
	"time"

	"github.com/estatehub/estate-service/internal/domain"
)

// PropertyRequest payload for create.
type PropertyRequest struct {
	LandlordID  *string               `json:"landlordId"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Address     string                `json:"address"`
	City        string                `json:"city"`
	Price       float64               `json:"price"`
	Status      domain.PropertyStatus `json:"status"`
	Bedrooms    int                   `json:"bedrooms"`
	Bathrooms   int                   `json:"bathrooms"`
	Images      []string              `json:"images"`
	Amenities   []string              `json:"amenities"`
}

// UpdatePropertyRequest is a partial update.
type UpdatePropertyRequest struct {
	LandlordID  *string                `json:"landlordId"`
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Address     *string                `json:"address"`
	City        *string                `json:"city"`
	Price       *float64               `json:"price"`
	Status      *domain.PropertyStatus `json:"status"`
	Bedrooms    *int                   `json:"bedrooms"`
	Bathrooms   *int                   `json:"bathrooms"`
	Images      *[]string              `json:"images"`
	Amenities   *[]string              `json:"amenities"`
}

// PropertyResponse represents a listing.
type PropertyResponse struct {
	ID          string                `json:"id"`
	LandlordID  *string               `json:"landlordId"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Address     string                `json:"address"`
	City        string                `json:"city"`
	Price       float64               `json:"price"`
	Status      domain.PropertyStatus `json:"status"`
	Bedrooms    int                   `json:"bedrooms"`
	Bathrooms   int                   `json:"bathrooms"`
	Images      []string              `json:"images"`
	Amenities   []string              `json:"amenities"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// NewPropertyResponse maps the domain model.
func NewPropertyResponse(p *domain.Property) PropertyResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return PropertyResponse{
		ID:          p.ID,
		LandlordID:  p.LandlordID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		Price:       p.Price,
		Status:      p.Status,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Images:      images,
		Amenities:   amenities,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
