package home

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/proc"
	"github.com/leeineian/flowy/sys"
)

func init() {
	moderatePerm := discord.PermissionModerateMembers

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "massping",
		Description:              "Repeatedly ping a member in this channel",
		DefaultMemberPermissions: omit.New(&moderatePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to ping",
				Required:    true,
			},
			discord.ApplicationCommandOptionInt{
				Name:        "count",
				Description: "How many pings (1-50)",
				Required:    true,
			},
		},
	}, handleMassPing)

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "massping-stop",
		Description:              "Stop an active mass ping",
		DefaultMemberPermissions: omit.New(&moderatePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member being pinged (omit to list active pings)",
				Required:    false,
			},
		},
	}, handleMassPingStop)
}

// memberTopRolePosition resolves the highest role position a member holds.
func memberTopRolePosition(client *bot.Client, guildID snowflake.ID, roleIDs []snowflake.ID) int {
	top := 0
	for _, roleID := range roleIDs {
		if role, ok := client.Caches.Role(guildID, roleID); ok && role.Position > top {
			top = role.Position
		}
	}
	return top
}

func handleMassPing(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, _ := data.OptUser("user")
	count := data.Int("count")

	if count < proc.MinPingCount {
		respond(event, sys.ErrMassPingCountLow, true)
		return
	}
	if count > proc.MaxPingCount {
		respond(event, sys.ErrMassPingCountHigh, true)
		return
	}

	client := event.Client()
	invoker := event.Member()

	// Guild owner outranks everyone, otherwise compare top roles.
	isOwner := false
	if guild, ok := client.Caches.Guild(guildID); ok {
		isOwner = guild.OwnerID == invoker.User.ID
	}
	if !isOwner && target.ID != invoker.User.ID {
		invokerTop := memberTopRolePosition(client, guildID, invoker.RoleIDs)
		targetTop := 0
		if targetMember, ok := client.Caches.Member(guildID, target.ID); ok {
			targetTop = memberTopRolePosition(client, guildID, targetMember.RoleIDs)
		}
		if targetTop >= invokerTop {
			respond(event, sys.ErrMassPingHierarchy, true)
			return
		}
	}

	if proc.IsPinging(guildID, target.ID) {
		respond(event, fmt.Sprintf(sys.ErrMassPingActive, target.EffectiveName()), true)
		return
	}

	channelID := event.Channel().ID()
	send := proc.ChannelPinger(client, channelID, target.ID)
	done := func(sent int) {
		sys.LogMassPing(sys.MsgMassPingDone, target.ID, sent, count)
		_, _ = client.Rest.CreateMessage(channelID, discord.NewMessageCreateBuilder().
			SetContent(fmt.Sprintf(sys.MsgMassPingDoneFollowup, target.Mention(), sent)).
			Build(), rest.WithCtx(sys.AppContext))
	}

	if err := proc.StartMassPing(sys.AppContext, guildID, target.ID, count, send, done); err != nil {
		respond(event, fmt.Sprintf(sys.ErrMassPingActive, target.EffectiveName()), true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgMassPingConfirm, target.Mention(), count), false)
}

func handleMassPingStop(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, ok := data.OptUser("user")
	if !ok {
		active := proc.ActivePings(guildID)
		if len(active) == 0 {
			respond(event, sys.ErrMassPingNoneActive, true)
			return
		}
		var b strings.Builder
		b.WriteString(sys.MsgMassPingActiveList)
		for userID, state := range active {
			fmt.Fprintf(&b, "\n- <@%s> (%d/%d sent)", userID, state.Sent(), state.Total)
		}
		respond(event, b.String(), true)
		return
	}

	if !proc.StopMassPing(guildID, target.ID) {
		respond(event, fmt.Sprintf(sys.ErrMassPingNotActive, target.EffectiveName()), true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgMassPingStopConfirm, target.Mention()), false)
}
