package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/leeineian/flowy/sys"
)

func init() {
	kickPerm := discord.PermissionKickMembers

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "kick",
		Description:              "Kick a member from the server",
		DefaultMemberPermissions: omit.New(&kickPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to kick",
				Required:    true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "reason",
				Description: "Why the member is being kicked",
				Required:    false,
			},
		},
	}, handleKick)
}

func handleKick(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, _ := data.OptUser("user")
	if !checkModTarget(event, guildID, target, "kick") {
		return
	}

	err := event.Client().Rest.RemoveMember(guildID, target.ID,
		rest.WithCtx(sys.AppContext), rest.WithReason(modReason(event, data)))
	if err != nil {
		if sys.IsForbidden(err) {
			respond(event, fmt.Sprintf(sys.ErrModForbidden, "kick"), true)
		} else {
			respond(event, "❌ Kick failed.", true)
		}
		return
	}

	respond(event, fmt.Sprintf("👢 Kicked **%s**", target.EffectiveName()), false)
}
