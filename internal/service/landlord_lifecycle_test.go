package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/notify"
)

func TestPlanTransition(t *testing.T) {
	active := domain.LandlordStatusActive
	inactive := domain.LandlordStatusInactive

	base := domain.Landlord{ID: "l-1", Email: "owner@example.com", Status: active}
	verified := base
	verified.IsVerified = true
	deactivated := base
	deactivated.Status = inactive
	deactivated.InactiveReason = ptr("late rent")

	tests := []struct {
		name         string
		before       domain.Landlord
		patch        domain.LandlordPatch
		wantVerified bool
		wantStatus   domain.LandlordStatus
		wantKinds    []notify.Kind
		wantRejected *string
		wantInactive *string
	}{
		{
			name:         "approval",
			before:       base,
			patch:        domain.LandlordPatch{IsVerified: ptr(true)},
			wantVerified: true,
			wantStatus:   active,
			wantKinds:    []notify.Kind{notify.KindApproval},
		},
		{
			name:         "approval reactivates and clears reasons",
			before:       deactivated,
			patch:        domain.LandlordPatch{IsVerified: ptr(true), Status: &inactive},
			wantVerified: true,
			wantStatus:   active,
			wantKinds:    []notify.Kind{notify.KindApproval},
		},
		{
			name:         "repeat approval",
			before:       verified,
			patch:        domain.LandlordPatch{IsVerified: ptr(true)},
			wantVerified: true,
			wantStatus:   active,
		},
		{
			name:         "rejection",
			before:       verified,
			patch:        domain.LandlordPatch{IsVerified: ptr(false), RejectionReason: ptr("fake deed")},
			wantStatus:   active,
			wantKinds:    []notify.Kind{notify.KindRejection},
			wantRejected: ptr("fake deed"),
		},
		{
			name:         "reason on unverified stores without email",
			before:       base,
			patch:        domain.LandlordPatch{IsVerified: ptr(false), RejectionReason: ptr("need utility bill")},
			wantStatus:   active,
			wantRejected: ptr("need utility bill"),
		},
		{
			name:         "blank reason ignored",
			before:       base,
			patch:        domain.LandlordPatch{RejectionReason: ptr("   ")},
			wantStatus:   active,
			wantRejected: nil,
		},
		{
			name:         "deactivate",
			before:       base,
			patch:        domain.LandlordPatch{Status: &inactive, InactiveReason: ptr("complaints")},
			wantStatus:   inactive,
			wantKinds:    []notify.Kind{notify.KindInactive},
			wantInactive: ptr("complaints"),
		},
		{
			name:         "deactivate again updates reason only",
			before:       deactivated,
			patch:        domain.LandlordPatch{Status: &inactive, InactiveReason: ptr("still late")},
			wantStatus:   inactive,
			wantInactive: ptr("still late"),
		},
		{
			name:         "inactive reason without status",
			before:       deactivated,
			patch:        domain.LandlordPatch{InactiveReason: ptr("new reason")},
			wantStatus:   inactive,
			wantInactive: ptr("new reason"),
		},
		{
			name:       "inactive reason ignored while active",
			before:     base,
			patch:      domain.LandlordPatch{InactiveReason: ptr("new reason")},
			wantStatus: active,
		},
		{
			name:       "activate",
			before:     deactivated,
			patch:      domain.LandlordPatch{Status: &active},
			wantStatus: active,
			wantKinds:  []notify.Kind{notify.KindActivation},
		},
		{
			name:         "rejection and deactivation together",
			before:       verified,
			patch:        domain.LandlordPatch{IsVerified: ptr(false), Status: &inactive},
			wantStatus:   inactive,
			wantKinds:    []notify.Kind{notify.KindRejection, notify.KindInactive},
			wantRejected: nil,
		},
		{
			name:       "profile only",
			before:     base,
			patch:      domain.LandlordPatch{Name: ptr(" New Name "), Email: ptr("NEW@example.com")},
			wantStatus: active,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planTransition(tt.before, tt.patch, "secret")

			assert.Equal(t, tt.wantVerified, got.after.IsVerified)
			assert.Equal(t, tt.wantStatus, got.after.Status)
			assert.Equal(t, tt.wantRejected, got.after.RejectionReason)
			assert.Equal(t, tt.wantInactive, got.after.InactiveReason)

			var kinds []notify.Kind
			for _, n := range got.notices {
				kinds = append(kinds, n.kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
			assert.Equal(t, tt.before, got.before)
		})
	}
}

func TestPlanTransition_ProfileFieldsNormalized(t *testing.T) {
	before := domain.Landlord{ID: "l-1", Email: "owner@example.com", Status: domain.LandlordStatusActive}

	got := planTransition(before, domain.LandlordPatch{
		Name:  ptr(" New Name "),
		Email: ptr(" NEW@Example.com "),
		Phone: ptr(" 0100 "),
	}, "")

	assert.Equal(t, "New Name", got.after.Name)
	assert.Equal(t, "new@example.com", got.after.Email)
	assert.Equal(t, "0100", got.after.Phone)
	assert.False(t, got.approved())
	assert.False(t, got.rejected())
	assert.False(t, got.statusChanged())
}

func TestPlanTransition_ApprovalCarriesPassword(t *testing.T) {
	before := domain.Landlord{ID: "l-1", Status: domain.LandlordStatusActive}

	got := planTransition(before, domain.LandlordPatch{IsVerified: ptr(true)}, "Temp#2024")

	if assert.Len(t, got.notices, 1) {
		assert.Equal(t, "Temp#2024", got.notices[0].password)
	}
	assert.True(t, got.approved())
}
