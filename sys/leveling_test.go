package sys

import (
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLeveling(t *testing.T) (*Leveling, *time.Time) {
	t.Helper()
	tracker, now := newTestTracker(time.Unix(1000, 0))
	l := NewLeveling(NewStore(t.TempDir()), tracker)
	l.randInt = func(n int) int { return 0 } // always the minimum gain
	return l, now
}

func TestLevelFromXP_KnownValues(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(30))
	assert.Equal(t, 1, LevelFromXP(100))
	assert.Equal(t, 2, LevelFromXP(155))
	assert.Equal(t, 3, LevelFromXP(220))
}

func TestProgress_ClampedFraction(t *testing.T) {
	assert.Equal(t, 0.0, Progress(0))
	assert.Equal(t, 0.0, Progress(140))
	assert.InDelta(t, 0.2, Progress(155), 1e-9)
	assert.Equal(t, 0.0, Progress(215))
	for _, xp := range []int{0, 75, 140, 155, 214, 215, 5000} {
		p := Progress(xp)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestXPForLevel_KnownValues(t *testing.T) {
	assert.Equal(t, 100, XPForLevel(0))
	assert.Equal(t, 155, XPForLevel(1))
	assert.Equal(t, 220, XPForLevel(2))
}

func TestXPSettings_Normalize(t *testing.T) {
	s := XPSettings{Rate: 50, MinGain: -3, MaxGain: 0, CooldownSeconds: -10}
	s.Normalize()
	assert.Equal(t, 10.0, s.Rate)
	assert.Equal(t, 1, s.MinGain)
	assert.Equal(t, 1, s.MaxGain, "max is pulled up to min")
	assert.Equal(t, 0, s.CooldownSeconds)
	assert.Equal(t, MsgLevelDefaultMessage, s.LevelUpMessage)

	s = XPSettings{Rate: 0.01, MinGain: 10, MaxGain: 5}
	s.Normalize()
	assert.Equal(t, 0.1, s.Rate)
	assert.Equal(t, 10, s.MaxGain)
}

func TestLeveling_SettingsDefaults(t *testing.T) {
	l, _ := newTestLeveling(t)

	s, err := l.Settings(testGuildID)
	require.NoError(t, err)
	assert.True(t, s.Enabled)
	assert.Equal(t, 1.0, s.Rate)
	assert.Equal(t, 15, s.MinGain)
	assert.Equal(t, 25, s.MaxGain)
	assert.Equal(t, 60, s.CooldownSeconds)
}

func TestLeveling_SettingsRoundTrip(t *testing.T) {
	l, _ := newTestLeveling(t)

	s := DefaultXPSettings()
	s.Rate = 2.0
	s.CooldownSeconds = 30
	s.IgnoredChannels = []snowflake.ID{555}
	require.NoError(t, l.SaveSettings(testGuildID, s))

	loaded, err := l.Settings(testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, loaded.Rate)
	assert.Equal(t, 30, loaded.CooldownSeconds)
	assert.True(t, loaded.ChannelIgnored(555))
	assert.False(t, loaded.ChannelIgnored(556))
}

func TestLeveling_UpdateSettingsSeesDefaults(t *testing.T) {
	l, _ := newTestLeveling(t)

	s, err := l.UpdateSettings(testGuildID, func(s *XPSettings) {
		assert.Equal(t, 15, s.MinGain, "fn receives the defaulted view")
		s.Rate = 3.0
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.Rate)
	assert.Equal(t, 25, s.MaxGain)

	loaded, err := l.Settings(testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, loaded.Rate)
}

func TestLeveling_ConcurrentUpdateSettingsKeepBothEdits(t *testing.T) {
	l, _ := newTestLeveling(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := l.UpdateSettings(testGuildID, func(s *XPSettings) { s.Rate = 2.0 })
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := l.UpdateSettings(testGuildID, func(s *XPSettings) {
			s.IgnoredChannels = append(s.IgnoredChannels, 555)
		})
		assert.NoError(t, err)
	}()
	wg.Wait()

	loaded, err := l.Settings(testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, loaded.Rate)
	assert.True(t, loaded.ChannelIgnored(555))
}

func TestLeveling_AwardDisabled(t *testing.T) {
	l, _ := newTestLeveling(t)

	s := DefaultXPSettings()
	s.Enabled = false
	require.NoError(t, l.SaveSettings(testGuildID, s))

	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestLeveling_AwardIgnoredChannel(t *testing.T) {
	l, _ := newTestLeveling(t)

	s := DefaultXPSettings()
	s.IgnoredChannels = []snowflake.ID{10}
	require.NoError(t, l.SaveSettings(testGuildID, s))

	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = l.AwardMessageXP(testGuildID, 11, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 15, res.Gained)
}

func TestLeveling_AwardIgnoredRole(t *testing.T) {
	l, _ := newTestLeveling(t)

	s := DefaultXPSettings()
	s.IgnoredRoles = []snowflake.ID{900}
	require.NoError(t, l.SaveSettings(testGuildID, s))

	res, err := l.AwardMessageXP(testGuildID, 10, 20, []snowflake.ID{899, 900})
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = l.AwardMessageXP(testGuildID, 10, 20, []snowflake.ID{899})
	require.NoError(t, err)
	require.NotNil(t, res)
}

func TestLeveling_AwardTracksMessageCount(t *testing.T) {
	l, now := newTestLeveling(t)

	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Record.MessageCount)
	assert.Equal(t, res.Record.TotalXP, res.Record.XP)

	*now = now.Add(61 * time.Second)
	res, err = l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Record.MessageCount)
}

func TestLeveling_AwardCooldown(t *testing.T) {
	l, now := newTestLeveling(t)

	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	res, err = l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	assert.Nil(t, res, "second message inside the cooldown earns nothing")

	*now = now.Add(61 * time.Second)
	res, err = l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 30, res.Record.TotalXP)
}

func TestLeveling_AwardAppliesRateWithRounding(t *testing.T) {
	l, _ := newTestLeveling(t)

	s := DefaultXPSettings()
	s.Rate = 0.5
	s.CooldownSeconds = 0
	require.NoError(t, l.SaveSettings(testGuildID, s))

	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 8, res.Gained, "15 * 0.5 rounds to 8, not truncates to 7")
}

func TestLeveling_AwardLevelUpAndReward(t *testing.T) {
	l, _ := newTestLeveling(t)

	s := DefaultXPSettings()
	s.RoleRewards = map[int]snowflake.ID{2: 777}
	require.NoError(t, l.SaveSettings(testGuildID, s))

	// Level 2 starts at 140 XP. Park the user just below it.
	_, err := l.SetXP(testGuildID, 20, 130)
	require.NoError(t, err)

	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Record.Level)
	assert.Equal(t, snowflake.ID(777), res.RewardRoleID)
}

func TestLeveling_AddXPFloorsAtZero(t *testing.T) {
	l, _ := newTestLeveling(t)

	_, err := l.SetXP(testGuildID, 20, 50)
	require.NoError(t, err)

	before, after, err := l.AddXP(testGuildID, 20, -500)
	require.NoError(t, err)
	assert.Equal(t, 50, before.TotalXP)
	assert.Equal(t, 0, after.TotalXP)
	assert.Equal(t, 1, after.Level)
}

func TestLeveling_ConcurrentAddXPNeverLosesGains(t *testing.T) {
	l, _ := newTestLeveling(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := l.AddXP(testGuildID, 20, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, _, _, ok, err := l.Rank(testGuildID, 20)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 160, rec.TotalXP)
}

func TestLeveling_ResetUser(t *testing.T) {
	l, _ := newTestLeveling(t)

	_, err := l.SetXP(testGuildID, 20, 500)
	require.NoError(t, err)
	require.NoError(t, l.ResetUser(testGuildID, 20))

	_, _, _, ok, err := l.Rank(testGuildID, 20)
	require.NoError(t, err)
	assert.False(t, ok, "reset removes the record entirely")

	// Earning XP again starts from a fresh record.
	res, err := l.AwardMessageXP(testGuildID, 10, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 15, res.Record.TotalXP)
	assert.Equal(t, 1, res.Record.Level)
	assert.Equal(t, 1, res.Record.MessageCount)
}

func TestLeveling_Rank(t *testing.T) {
	l, _ := newTestLeveling(t)

	for i, xp := range []int{300, 100, 200} {
		_, err := l.SetXP(testGuildID, snowflake.ID(20+i), xp)
		require.NoError(t, err)
	}

	rec, pos, total, ok, err := l.Rank(testGuildID, 22)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 3, total)
	assert.Equal(t, 200, rec.TotalXP)
}

func TestLeveling_LeaderboardTiesKeepInsertionOrder(t *testing.T) {
	l, _ := newTestLeveling(t)

	// Three users tie at 100 XP. Whoever earned XP first ranks first.
	for _, id := range []snowflake.ID{31, 32, 33} {
		_, err := l.SetXP(testGuildID, id, 100)
		require.NoError(t, err)
	}

	entries, page, totalPages, err := l.Leaderboard(testGuildID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, totalPages)
	require.Len(t, entries, 3)
	assert.Equal(t, snowflake.ID(31), entries[0].UserID)
	assert.Equal(t, snowflake.ID(32), entries[1].UserID)
	assert.Equal(t, snowflake.ID(33), entries[2].UserID)
}

func TestLeveling_LeaderboardPagination(t *testing.T) {
	l, _ := newTestLeveling(t)

	for i := 0; i < 25; i++ {
		_, err := l.SetXP(testGuildID, snowflake.ID(100+i), 1000-i)
		require.NoError(t, err)
	}

	entries, page, totalPages, err := l.Leaderboard(testGuildID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 3, totalPages)
	assert.Len(t, entries, 5)

	// Out-of-range pages clamp instead of erroring.
	_, page, _, err = l.Leaderboard(testGuildID, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	_, page, _, err = l.Leaderboard(testGuildID, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
}

func TestLeveling_LeaderboardEmpty(t *testing.T) {
	l, _ := newTestLeveling(t)

	entries, _, totalPages, err := l.Leaderboard(testGuildID, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, totalPages)
}

func TestFormatLevelUp(t *testing.T) {
	got := FormatLevelUp("🎉 {user} hit **Level {level}** in {server}!", "<@20>", 5, "My Server")
	assert.Equal(t, "🎉 <@20> hit **Level 5** in My Server!", got)

	// Placeholders may repeat.
	got = FormatLevelUp("{level}-{level}", "x", 3, "y")
	assert.Equal(t, "3-3", got)
}
