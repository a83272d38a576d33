package service

import (
	"strings"

	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/notify"
)

// notice is a notification owed for one applied edge.
type notice struct {
	kind     notify.Kind
	reason   string
	password string
}

// transition is the result of applying a patch to a snapshot.
type transition struct {
	before  domain.Landlord
	after   domain.Landlord
	notices []notice
}

func (t transition) approved() bool {
	return !t.before.IsVerified && t.after.IsVerified
}

func (t transition) rejected() bool {
	return t.before.IsVerified && !t.after.IsVerified
}

func (t transition) statusChanged() bool {
	return t.before.Status != t.after.Status
}

// planTransition applies patch to before and decides which notifications the
// change owes. Edges are always measured against before, never against the
// requested values, so repeating a request is a no-op.
//
// Verification and status are two machines coupled in one place: approval
// (false->true) forces status ACTIVE, and that forced activation is announced
// by the approval email alone. An explicit status in the same patch is ignored
// when approval happens.
func planTransition(before domain.Landlord, patch domain.LandlordPatch, password string) transition {
	after := before

	if patch.Name != nil {
		after.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		after.Email = normalizeEmail(*patch.Email)
	}
	if patch.Phone != nil {
		after.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.CompanyName != nil {
		after.CompanyName = strings.TrimSpace(*patch.CompanyName)
	}
	if patch.Address != nil {
		after.Address = strings.TrimSpace(*patch.Address)
	}

	var notices []notice
	rejectionReason := normalizeReason(patch.RejectionReason)

	approved := false
	switch {
	case patch.IsVerified != nil && *patch.IsVerified && !before.IsVerified:
		approved = true
		after.IsVerified = true
		after.Status = domain.LandlordStatusActive
		after.RejectionReason = nil
		after.InactiveReason = nil
		notices = append(notices, notice{kind: notify.KindApproval, password: password})
	case patch.IsVerified != nil && !*patch.IsVerified && before.IsVerified:
		after.IsVerified = false
		if rejectionReason != nil {
			after.RejectionReason = rejectionReason
		}
		notices = append(notices, notice{kind: notify.KindRejection, reason: deref(after.RejectionReason)})
	case rejectionReason != nil && !after.IsVerified:
		after.RejectionReason = rejectionReason
	}

	inactiveReason := normalizeReason(patch.InactiveReason)
	if patch.Status == nil && !approved && inactiveReason != nil && after.Status == domain.LandlordStatusInactive {
		after.InactiveReason = inactiveReason
	}
	if patch.Status != nil && !approved {
		switch {
		case *patch.Status == domain.LandlordStatusInactive && before.Status == domain.LandlordStatusActive:
			after.Status = domain.LandlordStatusInactive
			after.InactiveReason = inactiveReason
			notices = append(notices, notice{kind: notify.KindInactive, reason: deref(inactiveReason)})
		case *patch.Status == domain.LandlordStatusActive && before.Status == domain.LandlordStatusInactive:
			after.Status = domain.LandlordStatusActive
			after.InactiveReason = nil
			notices = append(notices, notice{kind: notify.KindActivation})
		case *patch.Status == domain.LandlordStatusInactive && inactiveReason != nil:
			after.InactiveReason = inactiveReason
		}
	}

	return transition{before: before, after: after, notices: notices}
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
