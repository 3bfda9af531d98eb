package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

func init() {
	managePerm := discord.PermissionManageMessages

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "purge",
		Description:              "Bulk delete recent messages in this channel",
		DefaultMemberPermissions: omit.New(&managePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionInt{
				Name:        "amount",
				Description: "How many messages to delete (1-100)",
				Required:    true,
			},
		},
	}, handlePurge)
}

func handlePurge(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	amount := data.Int("amount")
	if amount < 1 || amount > 100 {
		respond(event, sys.ErrModBadPurgeCount, true)
		return
	}

	if err := event.DeferCreateMessage(true); err != nil {
		return
	}
	client := event.Client()
	channelID := event.Channel().ID()

	messages, err := client.Rest.GetMessages(channelID, 0, 0, 0, amount, rest.WithCtx(sys.AppContext))
	if err != nil {
		if sys.IsForbidden(err) {
			updateResponse(event, sys.ErrModPurgeForbidden)
		} else {
			updateResponse(event, "❌ Couldn't fetch messages.")
		}
		return
	}
	if len(messages) == 0 {
		updateResponse(event, fmt.Sprintf(sys.MsgModPurged, 0))
		return
	}

	ids := make([]snowflake.ID, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}

	// Bulk delete needs at least two messages.
	if len(ids) == 1 {
		err = client.Rest.DeleteMessage(channelID, ids[0], rest.WithCtx(sys.AppContext))
	} else {
		err = client.Rest.BulkDeleteMessages(channelID, ids, rest.WithCtx(sys.AppContext))
	}
	if err != nil {
		if sys.IsForbidden(err) {
			updateResponse(event, sys.ErrModPurgeForbidden)
		} else {
			updateResponse(event, "❌ Couldn't delete messages. Bulk delete only works on messages under 14 days old.")
		}
		return
	}

	updateResponse(event, fmt.Sprintf(sys.MsgModPurged, len(ids)))
}
