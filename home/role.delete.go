package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/leeineian/flowy/sys"
)

func handleRoleDelete(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	role := data.Role("role")

	removed, err := selfRoles.RemoveRole(guildID, role.ID)
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't update the self-role registry.", true)
		return
	}
	if !removed {
		respond(event, sys.ErrSelfRoleNotFound, true)
		return
	}

	// Registry first, then Discord. If the remote delete fails the role
	// still stops appearing on panels.
	err = event.Client().Rest.DeleteRole(guildID, role.ID,
		rest.WithCtx(sys.AppContext),
		rest.WithReason(fmt.Sprintf("Self-role deleted by %s", event.User().Username)))
	if err != nil && !sys.IsNotFound(err) {
		sys.LogSelfRole(sys.MsgSelfRoleDeleteFail, role.ID, guildID, err)
		respond(event, fmt.Sprintf(sys.MsgSelfRoleRemoved, role.Name)+"\n⚠️ The Discord role itself couldn't be deleted.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgSelfRoleDeleted, role.Name), false)
}
