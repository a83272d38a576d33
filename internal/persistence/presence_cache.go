package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:touch:"

// PresenceThrottle gates heartbeat writes so a busy session updates lastSeen at
// most once per window.
type PresenceThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewPresenceThrottle returns nil when throttling is disabled.
func NewPresenceThrottle(r *Redis, window time.Duration) *PresenceThrottle {
	if r == nil || r.Client == nil || window <= 0 {
		return nil
	}
	return &PresenceThrottle{client: r.Client, window: window}
}

// Allow reports whether a heartbeat for userID should be written now. Redis
// errors fail open so presence keeps working without the cache.
func (p *PresenceThrottle) Allow(ctx context.Context, userID string) bool {
	if p == nil {
		return true
	}
	ok, err := p.client.SetNX(ctx, presenceKeyPrefix+userID, 1, p.window).Result()
	if err != nil {
		return true
	}
	return ok
}

// Reset drops the throttle key, used when a user goes offline so the next
// request marks them online immediately.
func (p *PresenceThrottle) Reset(ctx context.Context, userID string) {
	if p == nil {
		return
	}
	_ = p.client.Del(ctx, presenceKeyPrefix+userID).Err()
}
