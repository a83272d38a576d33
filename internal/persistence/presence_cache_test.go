package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPresenceThrottle_Disabled(t *testing.T) {
	assert.Nil(t, NewPresenceThrottle(nil, time.Minute))
	assert.Nil(t, NewPresenceThrottle(&Redis{}, time.Minute))
}

func TestPresenceThrottle_NilAlwaysAllows(t *testing.T) {
	var throttle *PresenceThrottle
	ctx := context.Background()

	assert.True(t, throttle.Allow(ctx, "u-1"))
	assert.True(t, throttle.Allow(ctx, "u-1"))
	throttle.Reset(ctx, "u-1")
}
