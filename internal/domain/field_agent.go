package domain

import "time"

// FieldAgent visits properties on behalf of the agency.
type FieldAgent struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Region    string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
