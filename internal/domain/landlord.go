package domain

import "time"

// LandlordStatus is the account-access gate, independent of verification.
type LandlordStatus string

const (
	LandlordStatusActive   LandlordStatus = "ACTIVE"
	LandlordStatusInactive LandlordStatus = "INACTIVE"
)

// Valid reports whether s is one of the known statuses.
func (s LandlordStatus) Valid() bool {
	return s == LandlordStatusActive || s == LandlordStatusInactive
}

// Landlord is a property owner whose verification and status are managed by admins.
type Landlord struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	CompanyName     string
	Address         string
	IsVerified      bool
	RejectionReason *string
	Status          LandlordStatus
	InactiveReason  *string
	IsSentEmail     bool
	IsSentAt        *time.Time
	CreatedByID     *string
	Version         int64
	PropertyCount   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LandlordPatch carries a partial update. Nil fields are left untouched.
type LandlordPatch struct {
	Name            *string
	Email           *string
	Phone           *string
	CompanyName     *string
	Address         *string
	IsVerified      *bool
	Status          *LandlordStatus
	RejectionReason *string
	InactiveReason  *string
}
