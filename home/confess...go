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
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "confess",
		Description: "Submit an anonymous confession",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:        "text",
				Description: "Your confession",
				Required:    true,
			},
		},
	}, handleConfess)

	adminPerm := discord.PermissionAdministrator
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "confession-setup",
		Description:              "Set the channel confessions are posted in (Admin Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionChannel{
				Name:        "channel",
				Description: "The confession channel",
				Required:    true,
			},
		},
	}, handleConfessionSetup)
}

func handleConfess(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	text := data.String("text")

	channelID, err := sys.GetConfessionChannel(sys.AppContext, guildID)
	if err != nil {
		sys.LogConfess(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't load the confession config.", true)
		return
	}
	if channelID == 0 {
		respond(event, "❌ "+sys.ErrConfessNoChannel, true)
		return
	}

	count, _ := sys.GetConfessionCount(sys.AppContext, guildID)
	_, err = event.Client().Rest.CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf("## 💌 Confession #%d\n>>> %s", count+1, text)).
		Build(), rest.WithCtx(sys.AppContext))
	if err != nil {
		switch {
		case sys.IsNotFound(err):
			respond(event, "❌ "+sys.ErrConfessChannelGone, true)
		case sys.IsForbidden(err):
			respond(event, "❌ "+sys.ErrConfessSendFail, true)
		default:
			respond(event, "❌ Couldn't post the confession.", true)
		}
		return
	}

	// Submissions are anonymous in Discord but logged with the author so
	// admins can handle abuse.
	user := event.User()
	err = sys.AddConfessionLog(sys.AppContext, &sys.ConfessionEntry{
		GuildID:  guildID,
		UserID:   user.ID,
		Username: user.Username,
		Content:  text,
	})
	if err != nil {
		sys.LogConfess(sys.MsgConfessLogFail, guildID, err)
	}

	respond(event, "✅ "+sys.MsgConfessSubmitted, true)
}

func handleConfessionSetup(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	channel := data.Channel("channel")

	if err := sys.SetConfessionChannel(sys.AppContext, guildID, channel.ID); err != nil {
		sys.LogConfess(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't save the confession channel.", true)
		return
	}

	respond(event, fmt.Sprintf("✅ "+sys.MsgConfessSetup, fmt.Sprintf("<#%s>", channel.ID)), false)
}
