package domain

import "time"

// ActivityAction is the fixed taxonomy of tracked user actions.
type ActivityAction string

const (
	ActionLogin        ActivityAction = "LOGIN"
	ActionLogout       ActivityAction = "LOGOUT"
	ActionCreate       ActivityAction = "CREATE"
	ActionUpdate       ActivityAction = "UPDATE"
	ActionDelete       ActivityAction = "DELETE"
	ActionVerify       ActivityAction = "VERIFY"
	ActionStatusChange ActivityAction = "STATUS_CHANGE"
	ActionHeartbeat    ActivityAction = "HEARTBEAT"
)

func (a ActivityAction) Valid() bool {
	switch a {
	case ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete,
		ActionVerify, ActionStatusChange, ActionHeartbeat:
		return true
	}
	return false
}

// UserActivity is an immutable activity log row.
type UserActivity struct {
	ID          string
	UserID      string
	Action      ActivityAction
	Description string
	Metadata    map[string]any
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}
