package sys

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

type cooldownKey struct {
	guildID snowflake.ID
	userID  snowflake.ID
}

// CooldownTracker remembers when each (guild, user) pair last earned XP.
// State is in-memory only, a restart clears all cooldowns.
type CooldownTracker struct {
	mu   sync.Mutex
	last map[cooldownKey]time.Time
	now  func() time.Time
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		last: make(map[cooldownKey]time.Time),
		now:  time.Now,
	}
}

// TryAcquire reports whether the user is off cooldown, and if so marks
// them as having just acted. A zero cooldown always succeeds but still
// records the timestamp.
func (c *CooldownTracker) TryAcquire(guildID, userID snowflake.ID, cooldownSeconds int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cooldownKey{guildID, userID}
	now := c.now()
	if prev, ok := c.last[key]; ok {
		if now.Sub(prev) < time.Duration(cooldownSeconds)*time.Second {
			return false
		}
	}
	c.last[key] = now
	return true
}

// Remaining returns how long until the user may earn XP again.
func (c *CooldownTracker) Remaining(guildID, userID snowflake.ID, cooldownSeconds int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.last[cooldownKey{guildID, userID}]
	if !ok {
		return 0
	}
	remaining := time.Duration(cooldownSeconds)*time.Second - c.now().Sub(prev)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Prune drops entries idle longer than maxIdle and returns how many were
// removed. The sweeper daemon calls this so the map does not grow without
// bound on busy servers.
func (c *CooldownTracker) Prune(maxIdle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxIdle)
	removed := 0
	for key, t := range c.last {
		if t.Before(cutoff) {
			delete(c.last, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked entries.
func (c *CooldownTracker) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
