package dto

import "github.com/estatehub/estate-service/internal/domain"

// SummaryResponse is the admin dashboard overview.
type SummaryResponse struct {
	Landlords struct {
		Total      int `json:"total"`
		Verified   int `json:"verified"`
		Unverified int `json:"unverified"`
		Active     int `json:"active"`
		Inactive   int `json:"inactive"`
	} `json:"landlords"`
	Properties struct {
		Total    int                           `json:"total"`
		ByStatus map[domain.PropertyStatus]int `json:"byStatus"`
	} `json:"properties"`
	UsersOnline int `json:"usersOnline"`
}
