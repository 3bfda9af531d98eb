package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

func handleXPToggle(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	enabled := data.Bool("enabled")
	if _, err := leveling.UpdateSettings(guildID, func(s *sys.XPSettings) {
		s.Enabled = enabled
	}); err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't update settings.", true)
		return
	}

	state := "✅ Enabled"
	if !enabled {
		state = "❌ Disabled"
	}
	respond(event, fmt.Sprintf(sys.MsgLevelToggled, state), false)
}

func handleXPConfig(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	// Out-of-range values are clamped on save rather than rejected.
	settings, err := leveling.UpdateSettings(guildID, func(s *sys.XPSettings) {
		if rate, ok := data.OptFloat("rate"); ok {
			s.Rate = rate
		}
		if min, ok := data.OptInt("min"); ok {
			s.MinGain = min
		}
		if max, ok := data.OptInt("max"); ok {
			s.MaxGain = max
		}
		if cooldown, ok := data.OptInt("cooldown"); ok {
			s.CooldownSeconds = cooldown
		}
	})
	if err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't save settings.", true)
		return
	}

	content := fmt.Sprintf("# ⚙️ XP Settings\n\n> **Rate:** %.1fx\n> **Gain:** %d-%d XP per message\n> **Cooldown:** %ds",
		settings.Rate, settings.MinGain, settings.MaxGain, settings.CooldownSeconds)
	respond(event, content, false)
}

func handleXPChannel(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	channel := data.Channel("channel")
	earnsXP := data.Bool("earns_xp")

	if _, err := leveling.UpdateSettings(guildID, func(s *sys.XPSettings) {
		filtered := s.IgnoredChannels[:0]
		for _, id := range s.IgnoredChannels {
			if id != channel.ID {
				filtered = append(filtered, id)
			}
		}
		s.IgnoredChannels = filtered
		if !earnsXP {
			s.IgnoredChannels = append(s.IgnoredChannels, channel.ID)
		}
	}); err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't save settings.", true)
		return
	}

	mention := fmt.Sprintf("<#%s>", channel.ID)
	if earnsXP {
		respond(event, fmt.Sprintf(sys.MsgLevelChannelAllowed, mention), false)
	} else {
		respond(event, fmt.Sprintf(sys.MsgLevelChannelIgnored, mention), false)
	}
}

func handleXPRole(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	role := data.Role("role")
	earnsXP := data.Bool("earns_xp")

	if _, err := leveling.UpdateSettings(guildID, func(s *sys.XPSettings) {
		filtered := s.IgnoredRoles[:0]
		for _, id := range s.IgnoredRoles {
			if id != role.ID {
				filtered = append(filtered, id)
			}
		}
		s.IgnoredRoles = filtered
		if !earnsXP {
			s.IgnoredRoles = append(s.IgnoredRoles, role.ID)
		}
	}); err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't save settings.", true)
		return
	}

	if earnsXP {
		respond(event, fmt.Sprintf(sys.MsgLevelRoleAllowed, role.Name), false)
	} else {
		respond(event, fmt.Sprintf(sys.MsgLevelRoleIgnored, role.Name), false)
	}
}

func handleXPReward(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	level := data.Int("level")
	role := data.Role("role")
	if level < 1 {
		respond(event, "❌ Level must be at least 1!", true)
		return
	}

	if _, err := leveling.UpdateSettings(guildID, func(s *sys.XPSettings) {
		if s.RoleRewards == nil {
			s.RoleRewards = map[int]snowflake.ID{}
		}
		s.RoleRewards[level] = role.ID
	}); err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't save settings.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgLevelRewardSet, role.Name, level), false)
}

func handleXPMessage(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	template := data.String("template")

	if _, err := leveling.UpdateSettings(guildID, func(s *sys.XPSettings) {
		s.LevelUpMessage = template
		if channel, ok := data.OptChannel("channel"); ok {
			s.AnnounceChannel = channel.ID
		}
	}); err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't save settings.", true)
		return
	}

	preview := sys.FormatLevelUp(template, event.User().Mention(), 5, "this server")
	respond(event, "✅ Level-up message updated! Preview:\n> "+preview, false)
}
