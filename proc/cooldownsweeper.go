package proc

import (
	"context"
	"time"

	"github.com/leeineian/flowy/sys"
)

// The XP cooldown map grows with every chatting user, so a sweeper
// drops entries for users who have gone quiet.
var (
	SweepInterval   = 30 * time.Minute
	CooldownMaxIdle = 24 * time.Hour
)

// InitCooldownSweeper registers the sweeper daemon. main calls this with
// the tracker the leveling engine uses.
func InitCooldownSweeper(tracker *sys.CooldownTracker) {
	sys.RegisterDaemon(sys.LogLevel, func(ctx context.Context) (bool, func(), func()) {
		stop := make(chan struct{})

		run := func() {
			ticker := time.NewTicker(SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := tracker.Prune(CooldownMaxIdle); n > 0 {
						sys.LogLevel(sys.MsgLevelSweeperPruned, n)
					}
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
			}
		}

		shutdown := func() { close(stop) }
		return true, run, shutdown
	})
}
