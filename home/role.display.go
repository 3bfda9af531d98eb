package home

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/leeineian/flowy/sys"
)

func handleRoleDisplay(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	category := strings.TrimSpace(data.String("category"))
	roles, err := selfRoles.CategoryRoles(guildID, category)
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't load the self-role registry.", true)
		return
	}
	if len(roles) == 0 {
		respond(event, fmt.Sprintf(sys.ErrSelfRoleCategoryEmpty, category), true)
		return
	}

	builder := discord.NewMessageCreateBuilder().
		SetContent(fmt.Sprintf("## %s\nClick a button to toggle the role. Picking a new one swaps it in.", category))

	// Up to 5 buttons per row, up to 5 rows per message.
	var row []discord.InteractiveComponent
	for i, r := range roles {
		if i >= 25 {
			break
		}
		row = append(row, discord.NewPrimaryButton(r.Label, sys.BuildSelfRoleID(guildID, category, r.RoleID)))
		if len(row) == 5 {
			builder.AddComponents(discord.NewActionRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		builder.AddComponents(discord.NewActionRow(row...))
	}

	_, err = event.Client().Rest.CreateMessage(event.Channel().ID(), builder.Build(), rest.WithCtx(sys.AppContext))
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't post the panel in this channel.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgSelfRolePanelCreated, category), true)
}

func handleRoleList(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	doc, err := selfRoles.Categories(guildID)
	if err != nil {
		sys.LogSelfRole(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't load the self-role registry.", true)
		return
	}
	if len(doc.Categories) == 0 {
		respond(event, sys.ErrSelfRoleNoCategories, true)
		return
	}

	var b strings.Builder
	b.WriteString("# 🎭 Self-Roles\n")
	for _, cat := range doc.Categories {
		fmt.Fprintf(&b, "\n**%s**\n", cat.Name)
		for _, r := range cat.Roles {
			fmt.Fprintf(&b, "> <@&%s>\n", r.RoleID)
		}
	}

	respond(event, b.String(), true)
}
