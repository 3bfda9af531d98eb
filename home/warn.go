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
	moderatePerm := discord.PermissionModerateMembers

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "warn",
		Description:              "Warn a member by DM",
		DefaultMemberPermissions: omit.New(&moderatePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to warn",
				Required:    true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "reason",
				Description: "What the member is being warned for",
				Required:    true,
			},
		},
	}, handleWarn)
}

func handleWarn(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, _ := data.OptUser("user")
	reason := data.String("reason")
	if !checkModTarget(event, guildID, target, "warn") {
		return
	}

	serverName := "this server"
	if guild, ok := event.Client().Caches.Guild(guildID); ok {
		serverName = guild.Name
	}

	dmDelivered := true
	dm, err := event.Client().Rest.CreateDMChannel(target.ID, rest.WithCtx(sys.AppContext))
	if err == nil {
		_, err = event.Client().Rest.CreateMessage(dm.ID(), discord.NewMessageCreateBuilder().
			SetContent(fmt.Sprintf("⚠️ You have been warned in **%s**:\n> %s", serverName, reason)).
			Build(), rest.WithCtx(sys.AppContext))
	}
	if err != nil {
		// DMs closed. The warning still counts, it just wasn't delivered.
		dmDelivered = false
	}

	content := fmt.Sprintf("⚠️ Warned %s: %s", target.Mention(), reason)
	if !dmDelivered {
		content += "\n-# Couldn't DM the member."
	}
	respond(event, content, false)
}
