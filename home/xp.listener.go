package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

func init() {
	sys.RegisterMessageCreateHandler(handleXPMessageCreate)
}

// announceTargets orders the channels a level-up notification is tried
// against. The configured channel may have been deleted or locked down
// since it was set, so the source channel stays as a fallback.
func announceTargets(configured, source snowflake.ID) []snowflake.ID {
	if configured == 0 || configured == source {
		return []snowflake.ID{source}
	}
	return []snowflake.ID{configured, source}
}

// handleXPMessageCreate awards XP for ordinary chat messages.
func handleXPMessageCreate(event *events.MessageCreate) {
	if event.Message.Author.Bot || event.GuildID == nil {
		return
	}
	guildID := *event.GuildID

	var memberRoles []snowflake.ID
	if event.Message.Member != nil {
		memberRoles = event.Message.Member.RoleIDs
	}

	result, err := leveling.AwardMessageXP(guildID, event.ChannelID, event.Message.Author.ID, memberRoles)
	if err != nil {
		sys.LogLevel(sys.MsgLevelAwardFail, event.Message.Author.ID, guildID, err)
		return
	}
	if result == nil || !result.LeveledUp {
		return
	}

	client := event.Client()
	settings, err := leveling.Settings(guildID)
	if err != nil {
		return
	}

	serverName := ""
	if guild, ok := client.Caches.Guild(guildID); ok {
		serverName = guild.Name
	}

	content := sys.FormatLevelUp(settings.LevelUpMessage, event.Message.Author.Mention(), result.Record.Level, serverName)
	if result.RewardRoleID != 0 {
		if role, ok := client.Caches.Role(guildID, result.RewardRoleID); ok {
			content += "\n" + fmt.Sprintf(sys.MsgLevelRewardEarned, event.Message.Author.Mention(), role.Name)
		}
	}

	msg := discord.NewMessageCreateBuilder().SetContent(content).Build()
	for _, channelID := range announceTargets(settings.AnnounceChannel, event.ChannelID) {
		_, err = client.Rest.CreateMessage(channelID, msg, rest.WithCtx(sys.AppContext))
		if err == nil {
			break
		}
		sys.LogLevel(sys.MsgLevelUpSendFail, event.Message.Author.ID, guildID, err)
	}

	if result.RewardRoleID != 0 {
		err = client.Rest.AddMemberRole(guildID, event.Message.Author.ID, result.RewardRoleID,
			rest.WithCtx(sys.AppContext),
			rest.WithReason(fmt.Sprintf("Level %d reward", result.Record.Level)))
		if err != nil {
			if sys.IsForbidden(err) {
				sys.LogLevel(sys.MsgLevelRewardSkipped, result.RewardRoleID, guildID)
			} else {
				sys.LogLevel(sys.MsgGenericError, err)
			}
		}
	}
}
