package home

import (
	"context"
	"log"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/leeineian/flowy/sys"
)

func init() {
	manageRolesPerm := discord.PermissionManageRoles

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "role",
		Description:              "Self-assignable role management",
		DefaultMemberPermissions: omit.New(&manageRolesPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "create",
				Description: "Create a new self-assignable role",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "name",
						Description: "The role name",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "category",
						Description: "Category the role belongs to (e.g. color, pronouns)",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "delete",
				Description: "Delete a self-assignable role",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionRole{
						Name:        "role",
						Description: "The role to delete",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "display",
				Description: "Post the self-role button panel for a category",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "category",
						Description: "The category to display",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "list",
				Description: "List all self-role categories and roles",
			},
		},
	}, handleRole)

	// One handler serves every panel button, past and future. Buttons
	// carry everything needed in their custom ID, so panels survive
	// restarts without any message tracking.
	sys.RegisterComponentHandler(sys.SelfRolePrefix, handleSelfRoleButton)

	sys.OnClientReady(func(ctx context.Context, client *bot.Client) {
		panels, guilds, err := selfRoles.PanelCounts()
		if err != nil {
			sys.LogSelfRole(sys.MsgGenericError, err)
			return
		}
		sys.LogSelfRole(sys.MsgSelfRolePanelsLoaded, panels, guilds)
	})
}

func handleRole(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	subCmd := *data.SubCommandName
	switch subCmd {
	case "create":
		handleRoleCreate(event, data)
	case "delete":
		handleRoleDelete(event, data)
	case "display":
		handleRoleDisplay(event, data)
	case "list":
		handleRoleList(event)
	default:
		log.Printf("Unknown role subcommand: %s", subCmd)
	}
}
