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
	managePerm := discord.PermissionManageMessages

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "msg",
		Description:              "Send a message as the bot",
		DefaultMemberPermissions: omit.New(&managePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:        "text",
				Description: "What the bot should say",
				Required:    true,
			},
			discord.ApplicationCommandOptionChannel{
				Name:        "channel",
				Description: "Where to send it (default: here)",
				Required:    false,
			},
		},
	}, handleMsg)
}

func handleMsg(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	text := data.String("text")

	channelID := event.Channel().ID()
	if channel, ok := data.OptChannel("channel"); ok {
		channelID = channel.ID
	}

	_, err := event.Client().Rest.CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(text).
		Build(), rest.WithCtx(sys.AppContext))
	if err != nil {
		if sys.IsForbidden(err) {
			respond(event, "❌ I can't send messages in that channel!", true)
		} else {
			respond(event, "❌ Couldn't send the message.", true)
		}
		return
	}

	respond(event, fmt.Sprintf("✅ Sent to <#%s>", channelID), true)
}
