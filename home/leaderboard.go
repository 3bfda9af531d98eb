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
		Name:        "leaderboard",
		Description: "Show the server XP leaderboard",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionInt{
				Name:        "page",
				Description: "Page to show (default: 1)",
				Required:    false,
			},
		},
	}, handleLeaderboard)
}

func handleLeaderboard(event *events.ApplicationCommandInteractionCreate) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	data := event.SlashCommandInteractionData()
	page := 1
	if p, ok := data.OptInt("page"); ok {
		page = p
	}

	entries, page, totalPages, err := leveling.Leaderboard(guildID, page)
	if err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't load the leaderboard.", true)
		return
	}
	if totalPages == 0 {
		respond(event, sys.ErrLevelNoRecords, true)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# 🏆 Leaderboard\n\n")
	offset := (page - 1) * sys.LeaderboardPageSize
	for i, rec := range entries {
		medal := fmt.Sprintf("**%d.**", offset+i+1)
		switch offset + i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&b, "%s <@%s> • Level %d (%d XP)\n", medal, rec.UserID, rec.Level, rec.TotalXP)
	}
	fmt.Fprintf(&b, "\n-# Page %d of %d", page, totalPages)

	respond(event, b.String(), false)
}
