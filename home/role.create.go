package home

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

// botTopRolePosition finds the highest role position the bot holds.
// Color roles are slotted just below it so they win the member's
// displayed color.
func botTopRolePosition(client *bot.Client, guildID snowflake.ID) int {
	self, ok := client.Caches.SelfUser()
	if !ok {
		return 0
	}
	member, ok := client.Caches.Member(guildID, self.ID)
	if !ok {
		return 0
	}

	top := 0
	for _, roleID := range member.RoleIDs {
		if role, ok := client.Caches.Role(guildID, roleID); ok && role.Position > top {
			top = role.Position
		}
	}
	return top
}

func handleRoleCreate(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	name := strings.TrimSpace(data.String("name"))
	category := strings.TrimSpace(data.String("category"))
	if strings.Contains(category, ":") {
		respond(event, sys.ErrSelfRoleBadCategory, true)
		return
	}
	if name == "" || category == "" {
		respond(event, "❌ Name and category can't be empty!", true)
		return
	}

	if err := event.DeferCreateMessage(true); err != nil {
		return
	}
	client := event.Client()

	create := discord.RoleCreate{Name: name}
	isColor := sys.IsColorCategory(category)
	if isColor {
		create.Color = rand.Intn(0xFFFFFF + 1)
	}

	role, err := client.Rest.CreateRole(guildID, create,
		rest.WithCtx(sys.AppContext),
		rest.WithReason(fmt.Sprintf("Self-role created by %s", event.User().Username)))
	if err != nil {
		sys.LogSelfRole(sys.MsgSelfRoleCreateFail, name, guildID, err)
		if sys.IsForbidden(err) {
			updateResponse(event, sys.ErrSelfRoleNoPermission)
		} else {
			updateResponse(event, "❌ Couldn't create the role.")
		}
		return
	}

	// Color roles sit just under the bot so they take display priority,
	// everything else goes to the bottom of the list.
	position := 1
	if isColor {
		if top := botTopRolePosition(client, guildID); top > 1 {
			position = top - 1
		}
	}
	_, err = client.Rest.UpdateRolePositions(guildID, []discord.RolePositionUpdate{
		{ID: role.ID, Position: &position},
	}, rest.WithCtx(sys.AppContext))
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
	}

	if err := selfRoles.AddRole(guildID, category, sys.SelfRole{RoleID: role.ID, Label: name}); err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		updateResponse(event, "❌ Role created but couldn't be registered. Try `/role delete` and create it again.")
		return
	}

	updateResponse(event, fmt.Sprintf(sys.MsgSelfRoleCreated, name, category, role.ID))
}
