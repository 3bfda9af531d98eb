package home

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/flowy/sys"
)

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "rank",
		Description: "Check your (or someone else's) level and XP",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionUser{
				Name:        "user",
				Description: "The member to look up (default: you)",
				Required:    false,
			},
		},
	}, handleRank)
}

func handleRank(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	target := event.User()
	if user, ok := data.OptUser("user"); ok {
		target = user
	}
	if target.Bot {
		respond(event, sys.ErrLevelBotsNoXP, true)
		return
	}

	rec, position, total, ok, err := leveling.Rank(guildID, target.ID)
	if err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't load rank data.", true)
		return
	}
	if !ok {
		respond(event, fmt.Sprintf("**%s** hasn't earned any XP yet!", target.EffectiveName()), true)
		return
	}

	// Progress toward the next level, as a ten-cell bar.
	needed := sys.XPForLevel(rec.Level)
	filled := int(sys.Progress(rec.TotalXP) * 10)
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
	content := fmt.Sprintf("# %s\n\n> **Level:** %d\n> %s\n> **Total XP:** %d\n> **Next level:** %d XP\n> **Messages:** %d\n> **Rank:** #%d of %d",
		target.EffectiveName(), rec.Level, bar, rec.TotalXP, needed, rec.MessageCount, position, total)

	respond(event, content, false)
}
