package home

import (
	"log"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/leeineian/flowy/sys"
)

func init() {
	adminPerm := discord.PermissionAdministrator

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "xp",
		Description:              "XP & leveling administration (Admin Only)",
		DefaultMemberPermissions: omit.New(&adminPerm),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "add",
				Description: "Give a member extra XP",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "The member to give XP to",
						Required:    true,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "amount",
						Description: "How much XP to add",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "remove",
				Description: "Take XP away from a member",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "The member to take XP from",
						Required:    true,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "amount",
						Description: "How much XP to remove",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: "Set a member's total XP exactly",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "The member to modify",
						Required:    true,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "amount",
						Description: "The new total XP",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "reset",
				Description: "Wipe a member's XP and level",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "The member to reset",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "toggle",
				Description: "Enable or disable the XP system",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionBool{
						Name:        "enabled",
						Description: "Whether members earn XP from chatting",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "config",
				Description: "Tune XP gain rate, range and cooldown",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionFloat{
						Name:        "rate",
						Description: "XP multiplier (0.1 - 10)",
						Required:    false,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "min",
						Description: "Minimum XP per message",
						Required:    false,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "max",
						Description: "Maximum XP per message",
						Required:    false,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "cooldown",
						Description: "Seconds between XP gains",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "channel",
				Description: "Include or exclude a channel from earning XP",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionChannel{
						Name:        "channel",
						Description: "The channel to change",
						Required:    true,
					},
					discord.ApplicationCommandOptionBool{
						Name:        "earns_xp",
						Description: "Whether messages here earn XP",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "role",
				Description: "Include or exclude a role from earning XP",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionRole{
						Name:        "role",
						Description: "The role to change",
						Required:    true,
					},
					discord.ApplicationCommandOptionBool{
						Name:        "earns_xp",
						Description: "Whether members with this role earn XP",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "reward",
				Description: "Grant a role when a member reaches a level",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "level",
						Description: "The level that earns the role",
						Required:    true,
					},
					discord.ApplicationCommandOptionRole{
						Name:        "role",
						Description: "The role to grant",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "message",
				Description: "Customize the level-up announcement",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "template",
						Description: "Message with {user}, {level} and {server} placeholders",
						Required:    true,
					},
					discord.ApplicationCommandOptionChannel{
						Name:        "channel",
						Description: "Where to announce (default: where the message was sent)",
						Required:    false,
					},
				},
			},
		},
	}, handleXP)
}

func handleXP(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	subCmd := *data.SubCommandName
	switch subCmd {
	case "add":
		handleXPAdd(event, data)
	case "remove":
		handleXPRemove(event, data)
	case "set":
		handleXPSet(event, data)
	case "reset":
		handleXPReset(event, data)
	case "toggle":
		handleXPToggle(event, data)
	case "config":
		handleXPConfig(event, data)
	case "channel":
		handleXPChannel(event, data)
	case "role":
		handleXPRole(event, data)
	case "reward":
		handleXPReward(event, data)
	case "message":
		handleXPMessage(event, data)
	default:
		log.Printf("Unknown xp subcommand: %s", subCmd)
	}
}
