package sys

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func newTestTracker(start time.Time) (*CooldownTracker, *time.Time) {
	now := start
	c := NewCooldownTracker()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCooldownTracker_TryAcquire(t *testing.T) {
	c, now := newTestTracker(time.Unix(1000, 0))
	guild := snowflake.ID(1)
	user := snowflake.ID(2)

	assert.True(t, c.TryAcquire(guild, user, 60), "first acquire always succeeds")
	assert.False(t, c.TryAcquire(guild, user, 60), "second acquire inside the window fails")

	*now = now.Add(59 * time.Second)
	assert.False(t, c.TryAcquire(guild, user, 60))

	*now = now.Add(1 * time.Second)
	assert.True(t, c.TryAcquire(guild, user, 60), "acquire succeeds once the window has passed")
}

func TestCooldownTracker_ScopedPerGuildAndUser(t *testing.T) {
	c, _ := newTestTracker(time.Unix(1000, 0))

	assert.True(t, c.TryAcquire(1, 2, 60))
	assert.True(t, c.TryAcquire(1, 3, 60), "different user, same guild")
	assert.True(t, c.TryAcquire(9, 2, 60), "same user, different guild")
	assert.False(t, c.TryAcquire(1, 2, 60))
}

func TestCooldownTracker_ZeroCooldown(t *testing.T) {
	c, _ := newTestTracker(time.Unix(1000, 0))

	assert.True(t, c.TryAcquire(1, 2, 0))
	assert.True(t, c.TryAcquire(1, 2, 0))
}

func TestCooldownTracker_Remaining(t *testing.T) {
	c, now := newTestTracker(time.Unix(1000, 0))

	assert.Equal(t, time.Duration(0), c.Remaining(1, 2, 60), "unknown user has no cooldown")

	c.TryAcquire(1, 2, 60)
	*now = now.Add(20 * time.Second)
	assert.Equal(t, 40*time.Second, c.Remaining(1, 2, 60))

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, time.Duration(0), c.Remaining(1, 2, 60))
}

func TestCooldownTracker_Prune(t *testing.T) {
	c, now := newTestTracker(time.Unix(1000, 0))

	c.TryAcquire(1, 2, 60)
	*now = now.Add(30 * time.Minute)
	c.TryAcquire(1, 3, 60)

	removed := c.Prune(10 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	// The surviving entry is the fresh one.
	assert.False(t, c.TryAcquire(1, 3, 3600))
	assert.True(t, c.TryAcquire(1, 2, 3600))
}
