package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

// checkModTarget runs the guard rails every moderation command shares:
// no self-moderation, no bots, never the owner, and the invoker must
// outrank the target. Replies with the matching error and returns false
// when any check fails.
func checkModTarget(event *events.ApplicationCommandInteractionCreate, guildID snowflake.ID, target discord.User, action string) bool {
	client := event.Client()
	invoker := event.Member()

	if target.ID == invoker.User.ID {
		respond(event, fmt.Sprintf(sys.ErrModSelfTarget, action), true)
		return false
	}
	if target.Bot {
		respond(event, fmt.Sprintf(sys.ErrModBotTarget, action), true)
		return false
	}

	guild, ok := client.Caches.Guild(guildID)
	if ok && target.ID == guild.OwnerID {
		respond(event, fmt.Sprintf(sys.ErrModOwnerTarget, action), true)
		return false
	}

	if !ok || guild.OwnerID != invoker.User.ID {
		invokerTop := memberTopRolePosition(client, guildID, invoker.RoleIDs)
		targetTop := 0
		if targetMember, ok := client.Caches.Member(guildID, target.ID); ok {
			targetTop = memberTopRolePosition(client, guildID, targetMember.RoleIDs)
		}
		if targetTop >= invokerTop {
			respond(event, fmt.Sprintf(sys.ErrModHierarchy, action), true)
			return false
		}
	}

	return true
}

func modReason(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) string {
	reason := sys.MsgModNoReason
	if r, ok := data.OptString("reason"); ok && r != "" {
		reason = r
	}
	return fmt.Sprintf("%s (by %s)", reason, event.User().Username)
}
