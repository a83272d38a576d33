package domain

import "time"

// PropertyStatus enumerates listing states.
type PropertyStatus string

const (
	PropertyStatusForRent PropertyStatus = "FOR_RENT"
	PropertyStatusForSale PropertyStatus = "FOR_SALE"
	PropertyStatusRented  PropertyStatus = "RENTED"
	PropertyStatusSold    PropertyStatus = "SOLD"
)

// PropertyStatuses lists every known status in display order.
var PropertyStatuses = []PropertyStatus{
	PropertyStatusForRent,
	PropertyStatusForSale,
	PropertyStatusRented,
	PropertyStatusSold,
}

func (s PropertyStatus) Valid() bool {
	for _, known := range PropertyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Property is a listing optionally owned by a landlord.
type Property struct {
	ID          string
	LandlordID  *string
	Title       string
	Description string
	Address     string
	City        string
	Price       float64
	Status      PropertyStatus
	Bedrooms    int
	Bathrooms   int
	Images      []string
	Amenities   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
