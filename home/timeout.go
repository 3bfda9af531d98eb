package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/leeineian/flowy/sys"
)

// Discord caps timeouts at 28 days.
const maxTimeoutMinutes = 40320

func init() {
	moderatePerm := discord.PermissionModerateMembers

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "timeout",
		Description:              "Time out a member",
		DefaultMemberPermissions: omit.New(&moderatePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to time out",
				Required:    true,
			},
			discord.ApplicationCommandOptionInt{
				Name:        "minutes",
				Description: "Timeout length in minutes (max 40320 = 28 days)",
				Required:    true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "reason",
				Description: "Why the member is being timed out",
				Required:    false,
			},
		},
	}, handleTimeout)

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "untimeout",
		Description:              "Remove a member's timeout",
		DefaultMemberPermissions: omit.New(&moderatePerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to release",
				Required:    true,
			},
		},
	}, handleUntimeout)
}

func handleTimeout(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, _ := data.OptUser("user")
	minutes := data.Int("minutes")

	if minutes < 1 {
		respond(event, "❌ Minutes must be at least 1!", true)
		return
	}
	if minutes > maxTimeoutMinutes {
		respond(event, sys.ErrModTimeoutTooLong, true)
		return
	}
	if !checkModTarget(event, guildID, target, "timeout") {
		return
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	_, err := event.Client().Rest.UpdateMember(guildID, target.ID, discord.MemberUpdate{
		CommunicationDisabledUntil: omit.New(&until),
	}, rest.WithCtx(sys.AppContext), rest.WithReason(modReason(event, data)))
	if err != nil {
		if sys.IsForbidden(err) {
			respond(event, fmt.Sprintf(sys.ErrModForbidden, "timeout"), true)
		} else {
			respond(event, "❌ Timeout failed.", true)
		}
		return
	}

	respond(event, fmt.Sprintf("🔇 Timed out %s for **%d minute(s)**", target.Mention(), minutes), false)
}

func handleUntimeout(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, _ := data.OptUser("user")

	member, ok := event.Client().Caches.Member(guildID, target.ID)
	if ok && (member.CommunicationDisabledUntil == nil || member.CommunicationDisabledUntil.Before(time.Now())) {
		respond(event, fmt.Sprintf(sys.ErrModNotTimedOut, target.EffectiveName()), true)
		return
	}

	_, err := event.Client().Rest.UpdateMember(guildID, target.ID, discord.MemberUpdate{
		CommunicationDisabledUntil: omit.New((*time.Time)(nil)),
	}, rest.WithCtx(sys.AppContext), rest.WithReason(fmt.Sprintf("Timeout removed by %s", event.User().Username)))
	if err != nil {
		if sys.IsForbidden(err) {
			respond(event, fmt.Sprintf(sys.ErrModForbidden, "untimeout"), true)
		} else {
			respond(event, "❌ Couldn't remove the timeout.", true)
		}
		return
	}

	respond(event, fmt.Sprintf(sys.MsgModUntimeout, target.Mention()), false)
}
