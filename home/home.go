package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

// Shared services, wired by main before the gateway opens.
var (
	store     *sys.Store
	leveling  *sys.Leveling
	selfRoles *sys.SelfRoles
)

// Use hands the home package its services. Commands register themselves
// in init(), so this must run before any interaction arrives.
func Use(s *sys.Store, l *sys.Leveling, sr *sys.SelfRoles) {
	store = s
	leveling = l
	selfRoles = sr
}

func respond(event *events.ApplicationCommandInteractionCreate, content string, ephemeral bool) {
	_ = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
			),
		).
		SetEphemeral(ephemeral).
		Build())
}

func respondComponent(event *events.ComponentInteractionCreate, content string, ephemeral bool) {
	_ = event.CreateMessage(discord.NewMessageCreateBuilder().
		SetIsComponentsV2(true).
		AddComponents(
			discord.NewContainer(
				discord.NewTextDisplay(content),
			),
		).
		SetEphemeral(ephemeral).
		Build())
}

func updateResponse(event *events.ApplicationCommandInteractionCreate, content string) {
	_, _ = event.Client().Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdateBuilder().
			SetIsComponentsV2(true).
			AddComponents(
				discord.NewContainer(
					discord.NewTextDisplay(content),
				),
			).
			Build())
}

// requireGuild replies with an error and returns 0 when the interaction
// did not come from a guild.
func requireGuild(event *events.ApplicationCommandInteractionCreate) snowflake.ID {
	guildID := event.GuildID()
	if guildID == nil {
		respond(event, sys.ErrLevelGuildOnly, true)
		return 0
	}
	return *guildID
}
