package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/leeineian/flowy/sys"
)

// handleSelfRoleButton serves every self-role panel button. Roles in a
// category are exclusive: clicking a new role swaps it for whatever
// category role the member held, clicking a held role removes it.
func handleSelfRoleButton(event *events.ComponentInteractionCreate) {
	guildID, category, roleID, err := sys.ParseSelfRoleID(event.Data.CustomID())
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		return
	}

	member := event.Member()
	if member == nil {
		respondComponent(event, sys.ErrSelfRoleGuildOnly, true)
		return
	}

	roles, err := selfRoles.CategoryRoles(guildID, category)
	if err != nil || len(roles) == 0 {
		respondComponent(event, sys.ErrSelfRoleNotFound, true)
		return
	}

	clicked := ""
	registered := false
	for _, r := range roles {
		if r.RoleID == roleID {
			clicked = r.Label
			registered = true
			break
		}
	}
	if !registered {
		// Stale button from before the role was deleted.
		respondComponent(event, sys.ErrSelfRoleNotFound, true)
		return
	}

	if err := event.DeferCreateMessage(true); err != nil {
		return
	}
	client := event.Client()
	userID := member.User.ID
	reason := fmt.Sprintf("Self-role panel (%s)", category)

	plan := sys.PlanToggle(member.RoleIDs, roles, roleID)

	for _, removeID := range plan.Remove {
		err := client.Rest.RemoveMemberRole(guildID, userID, removeID,
			rest.WithCtx(sys.AppContext), rest.WithReason(reason))
		if err != nil && !sys.IsNotFound(err) {
			sys.LogSelfRole(sys.MsgGenericError, err)
		}
	}

	if plan.Add == 0 {
		updateComponentResponse(event, fmt.Sprintf(sys.MsgSelfRoleRemoved, clicked))
		return
	}

	err = client.Rest.AddMemberRole(guildID, userID, plan.Add,
		rest.WithCtx(sys.AppContext), rest.WithReason(reason))
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		updateComponentResponse(event, fmt.Sprintf(sys.ErrSelfRoleToggleFail, clicked, category))
		return
	}

	if len(plan.Remove) > 0 {
		updateComponentResponse(event, fmt.Sprintf(sys.MsgSelfRoleAdded, clicked, category))
	} else {
		updateComponentResponse(event, fmt.Sprintf("✅ Added role: **%s**", clicked))
	}
}

func updateComponentResponse(event *events.ComponentInteractionCreate, content string) {
	_, _ = event.Client().Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(),
		discord.NewMessageUpdateBuilder().
			SetIsComponentsV2(true).
			AddComponents(
				discord.NewContainer(
					discord.NewTextDisplay(content),
				),
			).
			Build())
}
