package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

func init() {
	banPerm := discord.PermissionBanMembers

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "ban",
		Description:              "Ban a member from the server",
		DefaultMemberPermissions: omit.New(&banPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to ban",
				Required:    true,
			},
			discord.ApplicationCommandOptionString{
				Name:        "reason",
				Description: "Why the member is being banned",
				Required:    false,
			},
			discord.ApplicationCommandOptionInt{
				Name:        "delete_days",
				Description: "Days of messages to delete (0-7)",
				Required:    false,
			},
		},
	}, handleBan)

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "unban",
		Description:              "Remove a ban by user ID",
		DefaultMemberPermissions: omit.New(&banPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:        "user_id",
				Description: "The banned user's ID",
				Required:    true,
			},
		},
	}, handleUnban)
}

func handleBan(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target, _ := data.OptUser("user")

	deleteDays := 0
	if d, ok := data.OptInt("delete_days"); ok {
		deleteDays = d
	}
	if deleteDays < 0 || deleteDays > 7 {
		respond(event, sys.ErrModBadDeleteDays, true)
		return
	}
	if !checkModTarget(event, guildID, target, "ban") {
		return
	}

	err := event.Client().Rest.AddBan(guildID, target.ID, time.Duration(deleteDays)*24*time.Hour,
		rest.WithCtx(sys.AppContext), rest.WithReason(modReason(event, data)))
	if err != nil {
		if sys.IsForbidden(err) {
			respond(event, fmt.Sprintf(sys.ErrModForbidden, "ban"), true)
		} else {
			respond(event, "❌ Ban failed.", true)
		}
		return
	}

	respond(event, fmt.Sprintf("🔨 Banned **%s**", target.EffectiveName()), false)
}

func handleUnban(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	userID, err := snowflake.Parse(data.String("user_id"))
	if err != nil {
		respond(event, sys.ErrModBadUserID, true)
		return
	}

	err = event.Client().Rest.DeleteBan(guildID, userID,
		rest.WithCtx(sys.AppContext), rest.WithReason(fmt.Sprintf("Unbanned by %s", event.User().Username)))
	if err != nil {
		switch {
		case sys.IsNotFound(err):
			respond(event, sys.ErrModNotBanned, true)
		case sys.IsForbidden(err):
			respond(event, sys.ErrModUnbanForbidden, true)
		default:
			respond(event, "❌ Unban failed.", true)
		}
		return
	}

	respond(event, fmt.Sprintf("✅ Unbanned <@%s>", userID), false)
}
