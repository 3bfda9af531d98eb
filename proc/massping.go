package proc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
	"golang.org/x/time/rate"
)

// Pacing between pings. One ping per half second keeps a 50-ping run
// safely under Discord's channel message limits.
var (
	PingInterval     = 500 * time.Millisecond
	RateLimitBackoff = 2 * time.Second
)

const (
	MinPingCount = 1
	MaxPingCount = 50
)

type pingKey struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// PingState tracks one running mass ping.
type PingState struct {
	StopChan chan struct{}
	Total    int

	stopOnce sync.Once
	mu       sync.Mutex
	sent     int
}

func (s *PingState) stop() {
	s.stopOnce.Do(func() { close(s.StopChan) })
}

func (s *PingState) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

func (s *PingState) addSent() {
	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
}

var activePings sync.Map // map[pingKey]*PingState

// IsPinging reports whether a mass ping is already running against the
// user in this guild.
func IsPinging(guildID, userID snowflake.ID) bool {
	_, ok := activePings.Load(pingKey{guildID, userID})
	return ok
}

// StartMassPing claims the (guild, user) slot and runs count pings in a
// background goroutine. Only one run per target may be in flight, a
// second start while one is active returns an error. send delivers one
// ping and done receives the final sent count when the run ends for any
// reason.
func StartMassPing(ctx context.Context, guildID, userID snowflake.ID, count int, send func(ctx context.Context) error, done func(sent int)) error {
	if count < MinPingCount || count > MaxPingCount {
		return fmt.Errorf("ping count %d out of range [%d, %d]", count, MinPingCount, MaxPingCount)
	}

	key := pingKey{guildID, userID}
	state := &PingState{StopChan: make(chan struct{}), Total: count}
	if _, loaded := activePings.LoadOrStore(key, state); loaded {
		return fmt.Errorf("mass ping already active for user %s in guild %s", userID, guildID)
	}

	go func() {
		defer func() {
			// Only the owning run may release the claim. A stopped run
			// can otherwise outlive its slot and clear a successor's.
			activePings.CompareAndDelete(key, state)
			if done != nil {
				done(state.Sent())
			}
		}()

		limiter := rate.NewLimiter(rate.Every(PingInterval), 1)
		for i := 0; i < count; i++ {
			select {
			case <-state.StopChan:
				return
			case <-ctx.Done():
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			if err := send(ctx); err != nil {
				sys.LogMassPing(sys.MsgMassPingSendFail, i+1, count, err)
				if sys.IsRateLimited(err) {
					sys.LogMassPing(sys.MsgMassPingRateLimit, RateLimitBackoff)
					select {
					case <-time.After(RateLimitBackoff):
					case <-state.StopChan:
						return
					case <-ctx.Done():
						return
					}
				}
				continue
			}
			state.addSent()
		}
	}()

	sys.LogMassPing(sys.MsgMassPingStarted, userID, guildID, count)
	return nil
}

// StopMassPing cancels a running mass ping. It reports whether one was
// active. The (guild, user) slot stays claimed until the stopped run
// actually exits.
func StopMassPing(guildID, userID snowflake.ID) bool {
	if val, ok := activePings.Load(pingKey{guildID, userID}); ok {
		val.(*PingState).stop()
		sys.LogMassPing(sys.MsgMassPingStopped, userID)
		return true
	}
	return false
}

// ChannelPinger builds the send function used by the /massping command:
// each ping mentions the target in the channel the command ran in.
func ChannelPinger(client *bot.Client, channelID, userID snowflake.ID) func(ctx context.Context) error {
	content := fmt.Sprintf("<@%s>", userID)
	return func(ctx context.Context) error {
		_, err := client.Rest.CreateMessage(channelID, discord.NewMessageCreateBuilder().
			SetContent(content).
			Build(), rest.WithCtx(ctx))
		return err
	}
}

// ActivePings returns a snapshot of running pings keyed by target user.
func ActivePings(guildID snowflake.ID) map[snowflake.ID]*PingState {
	res := make(map[snowflake.ID]*PingState)
	activePings.Range(func(k, v interface{}) bool {
		key := k.(pingKey)
		if key.GuildID == guildID {
			res[key.UserID] = v.(*PingState)
		}
		return true
	})
	return res
}
