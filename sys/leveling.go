package sys

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// Document names under each guild's data directory.
const (
	DocLevels    = "levels"
	DocXPConfig  = "xpconfig"
	DocSelfRoles = "selfroles"
)

const LeaderboardPageSize = 10

// XPSettings is the per-guild leveling configuration document.
type XPSettings struct {
	Enabled         bool                 `json:"enabled"`
	Rate            float64              `json:"xp_rate"`
	MinGain         int                  `json:"xp_min"`
	MaxGain         int                  `json:"xp_max"`
	CooldownSeconds int                  `json:"cooldown"`
	LevelUpMessage  string               `json:"level_up_message"`
	AnnounceChannel snowflake.ID         `json:"announce_channel,omitempty"`
	IgnoredChannels []snowflake.ID       `json:"ignored_channels,omitempty"`
	IgnoredRoles    []snowflake.ID       `json:"ignored_roles,omitempty"`
	RoleRewards     map[int]snowflake.ID `json:"role_rewards,omitempty"`
}

func DefaultXPSettings() XPSettings {
	return XPSettings{
		Enabled:         true,
		Rate:            1.0,
		MinGain:         15,
		MaxGain:         25,
		CooldownSeconds: 60,
		LevelUpMessage:  MsgLevelDefaultMessage,
	}
}

// Normalize clamps settings into their valid ranges.
func (s *XPSettings) Normalize() {
	if s.Rate < 0.1 {
		s.Rate = 0.1
	}
	if s.Rate > 10 {
		s.Rate = 10
	}
	if s.MinGain < 1 {
		s.MinGain = 1
	}
	if s.MaxGain < s.MinGain {
		s.MaxGain = s.MinGain
	}
	if s.CooldownSeconds < 0 {
		s.CooldownSeconds = 0
	}
	if s.LevelUpMessage == "" {
		s.LevelUpMessage = MsgLevelDefaultMessage
	}
}

func (s *XPSettings) ChannelIgnored(channelID snowflake.ID) bool {
	for _, id := range s.IgnoredChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// RoleIgnored reports whether any of the member's roles is excluded
// from earning XP.
func (s *XPSettings) RoleIgnored(roleIDs []snowflake.ID) bool {
	for _, ignored := range s.IgnoredRoles {
		for _, id := range roleIDs {
			if id == ignored {
				return true
			}
		}
	}
	return false
}

// LevelRecord is one user's standing. Records live in an ordered array,
// first XP earned means first position, which breaks leaderboard ties.
type LevelRecord struct {
	UserID       snowflake.ID `json:"user_id"`
	XP           int          `json:"xp"`
	TotalXP      int          `json:"total_xp"`
	Level        int          `json:"level"`
	MessageCount int          `json:"message_count"`
}

type LevelsDoc struct {
	Records []*LevelRecord `json:"records"`
}

func (d *LevelsDoc) find(userID snowflake.ID) *LevelRecord {
	for _, r := range d.Records {
		if r.UserID == userID {
			return r
		}
	}
	return nil
}

func (d *LevelsDoc) findOrCreate(userID snowflake.ID) *LevelRecord {
	if r := d.find(userID); r != nil {
		return r
	}
	r := &LevelRecord{UserID: userID, Level: 1}
	d.Records = append(d.Records, r)
	return r
}

// sorted returns records by descending total XP. The sort is stable so
// tied users keep their insertion order.
func (d *LevelsDoc) sorted() []*LevelRecord {
	out := make([]*LevelRecord, len(d.Records))
	copy(out, d.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalXP > out[j].TotalXP
	})
	return out
}

// --- Curve ---

// LevelFromXP maps cumulative XP to a level. Everyone is at least level 1.
func LevelFromXP(totalXP int) int {
	inner := 2500 + 20*totalXP - 400
	if inner < 0 {
		inner = 0
	}
	level := int((-50 + math.Sqrt(float64(inner))) / 10)
	if level < 1 {
		level = 1
	}
	return level
}

// XPForLevel is the XP needed to advance from the given level to the next.
func XPForLevel(level int) int {
	return 5*level*level + 50*level + 100
}

// levelFloorXP is the cumulative XP at which the given level begins,
// the inverse of LevelFromXP's curve.
func levelFloorXP(level int) int {
	return 5*level*level + 50*level + 20
}

// Progress reports how far through the current level the user is, as a
// fraction in [0, 1].
func Progress(totalXP int) float64 {
	level := LevelFromXP(totalXP)
	floor := levelFloorXP(level)
	ceil := levelFloorXP(level + 1)
	if totalXP <= floor {
		return 0
	}
	if totalXP >= ceil {
		return 1
	}
	return float64(totalXP-floor) / float64(ceil-floor)
}

// FormatLevelUp expands the {user}, {level} and {server} placeholders.
func FormatLevelUp(template, userMention string, level int, serverName string) string {
	out := strings.ReplaceAll(template, "{user}", userMention)
	out = strings.ReplaceAll(out, "{level}", strconv.Itoa(level))
	out = strings.ReplaceAll(out, "{server}", serverName)
	return out
}

// --- Engine ---

// AwardResult describes the outcome of one XP grant.
type AwardResult struct {
	Record       LevelRecord
	Gained       int
	LeveledUp    bool
	RewardRoleID snowflake.ID
}

type Leveling struct {
	store     *Store
	cooldowns *CooldownTracker
	randInt   func(n int) int
}

func NewLeveling(store *Store, cooldowns *CooldownTracker) *Leveling {
	return &Leveling{
		store:     store,
		cooldowns: cooldowns,
		randInt:   rand.Intn,
	}
}

// Settings returns the guild's XP configuration, falling back to the
// defaults when no document exists. MaxGain is never 0 in a saved
// document, so a zero value means nothing was stored.
func (l *Leveling) Settings(guildID snowflake.ID) (XPSettings, error) {
	var s XPSettings
	if err := l.store.Load(guildID, DocXPConfig, &s); err != nil {
		return XPSettings{}, err
	}
	if s.MaxGain == 0 {
		defaults := DefaultXPSettings()
		defaults.AnnounceChannel = s.AnnounceChannel
		defaults.IgnoredChannels = s.IgnoredChannels
		defaults.IgnoredRoles = s.IgnoredRoles
		defaults.RoleRewards = s.RoleRewards
		return defaults, nil
	}
	if s.LevelUpMessage == "" {
		s.LevelUpMessage = MsgLevelDefaultMessage
	}
	return s, nil
}

func (l *Leveling) SaveSettings(guildID snowflake.ID, s XPSettings) error {
	s.Normalize()
	return l.store.Save(guildID, DocXPConfig, &s)
}

// UpdateSettings applies fn to the guild's XP configuration under the
// document lock, so two concurrent edits cannot overwrite each other.
// fn sees the same defaulted view Settings returns, and the result is
// normalized before it is written back.
func (l *Leveling) UpdateSettings(guildID snowflake.ID, fn func(s *XPSettings)) (XPSettings, error) {
	var s XPSettings
	err := l.store.Update(guildID, DocXPConfig, &s, func() error {
		if s.MaxGain == 0 {
			defaults := DefaultXPSettings()
			defaults.AnnounceChannel = s.AnnounceChannel
			defaults.IgnoredChannels = s.IgnoredChannels
			defaults.IgnoredRoles = s.IgnoredRoles
			defaults.RoleRewards = s.RoleRewards
			s = defaults
		}
		if s.LevelUpMessage == "" {
			s.LevelUpMessage = MsgLevelDefaultMessage
		}
		fn(&s)
		s.Normalize()
		return nil
	})
	if err != nil {
		return XPSettings{}, err
	}
	return s, nil
}

// AwardMessageXP grants XP for one message. It returns nil when the
// message earns nothing, XP disabled, ignored channel or role, or the
// user is still on cooldown.
func (l *Leveling) AwardMessageXP(guildID, channelID, userID snowflake.ID, memberRoles []snowflake.ID) (*AwardResult, error) {
	settings, err := l.Settings(guildID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled || settings.ChannelIgnored(channelID) || settings.RoleIgnored(memberRoles) {
		return nil, nil
	}
	if !l.cooldowns.TryAcquire(guildID, userID, settings.CooldownSeconds) {
		return nil, nil
	}

	span := settings.MaxGain - settings.MinGain + 1
	base := settings.MinGain + l.randInt(span)
	gained := int(math.Round(float64(base) * settings.Rate))
	if gained < 1 {
		gained = 1
	}

	var result *AwardResult
	var doc LevelsDoc
	err = l.store.Update(guildID, DocLevels, &doc, func() error {
		rec := doc.findOrCreate(userID)
		oldLevel := rec.Level
		rec.XP += gained
		rec.TotalXP += gained
		rec.MessageCount++
		rec.Level = LevelFromXP(rec.TotalXP)

		result = &AwardResult{Record: *rec, Gained: gained}
		if rec.Level > oldLevel {
			result.LeveledUp = true
			if roleID, ok := settings.RoleRewards[rec.Level]; ok {
				result.RewardRoleID = roleID
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddXP adjusts a user's XP by delta, which may be negative. XP never
// drops below zero. It returns the record before and after the change.
func (l *Leveling) AddXP(guildID, userID snowflake.ID, delta int) (before, after LevelRecord, err error) {
	var doc LevelsDoc
	err = l.store.Update(guildID, DocLevels, &doc, func() error {
		rec := doc.findOrCreate(userID)
		before = *rec
		rec.XP += delta
		if rec.XP < 0 {
			rec.XP = 0
		}
		rec.TotalXP += delta
		if rec.TotalXP < 0 {
			rec.TotalXP = 0
		}
		rec.Level = LevelFromXP(rec.TotalXP)
		after = *rec
		return nil
	})
	return before, after, err
}

// SetXP sets a user's total XP to an exact value.
func (l *Leveling) SetXP(guildID, userID snowflake.ID, totalXP int) (LevelRecord, error) {
	if totalXP < 0 {
		totalXP = 0
	}
	var after LevelRecord
	var doc LevelsDoc
	err := l.store.Update(guildID, DocLevels, &doc, func() error {
		rec := doc.findOrCreate(userID)
		rec.XP = totalXP
		rec.TotalXP = totalXP
		rec.Level = LevelFromXP(totalXP)
		after = *rec
		return nil
	})
	return after, err
}

// ResetUser removes a user's record entirely.
func (l *Leveling) ResetUser(guildID, userID snowflake.ID) error {
	var doc LevelsDoc
	return l.store.Update(guildID, DocLevels, &doc, func() error {
		for i, r := range doc.Records {
			if r.UserID == userID {
				doc.Records = append(doc.Records[:i], doc.Records[i+1:]...)
				break
			}
		}
		return nil
	})
}

// Rank returns a user's standing: their record, 1-based position and the
// number of ranked users. ok is false when the user has no record.
func (l *Leveling) Rank(guildID, userID snowflake.ID) (rec LevelRecord, position, total int, ok bool, err error) {
	var doc LevelsDoc
	if err = l.store.Load(guildID, DocLevels, &doc); err != nil {
		return LevelRecord{}, 0, 0, false, err
	}
	ranked := doc.sorted()
	for i, r := range ranked {
		if r.UserID == userID {
			return *r, i + 1, len(ranked), true, nil
		}
	}
	return LevelRecord{}, 0, len(ranked), false, nil
}

// Leaderboard returns one page of ranked records. The requested page is
// clamped into the valid range.
func (l *Leveling) Leaderboard(guildID snowflake.ID, page int) (entries []LevelRecord, currentPage, totalPages int, err error) {
	var doc LevelsDoc
	if err = l.store.Load(guildID, DocLevels, &doc); err != nil {
		return nil, 0, 0, err
	}
	ranked := doc.sorted()
	if len(ranked) == 0 {
		return nil, 1, 0, nil
	}

	totalPages = (len(ranked) + LeaderboardPageSize - 1) / LeaderboardPageSize
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * LeaderboardPageSize
	end := start + LeaderboardPageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	for _, r := range ranked[start:end] {
		entries = append(entries, *r)
	}
	return entries, page, totalPages, nil
}
