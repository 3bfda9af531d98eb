package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/flowy/sys"
)

func handleXPAdd(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	target, _ := data.OptUser("user")
	amount := data.Int("amount")
	if target.Bot {
		respond(event, sys.ErrLevelBotsNoXP, true)
		return
	}
	if amount < 1 {
		respond(event, "❌ Amount must be at least 1!", true)
		return
	}

	before, after, err := leveling.AddXP(guildID, target.ID, amount)
	if err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't update XP.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgLevelXPAdded, amount, target.EffectiveName(), before.Level, after.Level), false)
}

func handleXPRemove(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	target, _ := data.OptUser("user")
	amount := data.Int("amount")
	if amount < 1 {
		respond(event, "❌ Amount must be at least 1!", true)
		return
	}

	before, after, err := leveling.AddXP(guildID, target.ID, -amount)
	if err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't update XP.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgLevelXPRemoved, amount, target.EffectiveName(), before.Level, after.Level), false)
}

func handleXPSet(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	target, _ := data.OptUser("user")
	amount := data.Int("amount")
	if amount < 0 {
		respond(event, "❌ XP can't be negative!", true)
		return
	}

	after, err := leveling.SetXP(guildID, target.ID, amount)
	if err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't update XP.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgLevelXPSet, target.EffectiveName(), after.TotalXP, after.Level), false)
}

func handleXPReset(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID := requireGuild(event)
	if guildID == 0 {
		return
	}

	target, _ := data.OptUser("user")
	if err := leveling.ResetUser(guildID, target.ID); err != nil {
		sys.LogLevel(sys.MsgGenericError, err)
		respond(event, "❌ Couldn't reset XP.", true)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgLevelXPReset, target.EffectiveName()), false)
}
