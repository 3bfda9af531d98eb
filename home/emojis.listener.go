package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
	"golang.org/x/time/rate"
)

// Typing "addemotes" in a channel bulk-uploads every image in the
// configured emoji directory as emoji_1, emoji_2, ... Numbering
// continues after whatever the guild already has.

func init() {
	sys.RegisterMessageCreateHandler(handleEmojiImport)
}

func memberPermissions(client *bot.Client, guildID snowflake.ID, member *discord.Member) discord.Permissions {
	var perms discord.Permissions
	// @everyone shares its ID with the guild.
	if role, ok := client.Caches.Role(guildID, guildID); ok {
		perms |= role.Permissions
	}
	if member == nil {
		return perms
	}
	for _, roleID := range member.RoleIDs {
		if role, ok := client.Caches.Role(guildID, roleID); ok {
			perms |= role.Permissions
		}
	}
	return perms
}

func iconTypeFor(path string) (discord.IconType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return discord.IconTypePNG, true
	case ".jpg", ".jpeg":
		return discord.IconTypeJPEG, true
	case ".gif":
		return discord.IconTypeGIF, true
	default:
		return "", false
	}
}

func handleEmojiImport(event *events.MessageCreate) {
	msg := event.Message
	if msg.Author.Bot || event.GuildID == nil {
		return
	}
	if strings.TrimSpace(strings.ToLower(msg.Content)) != "addemotes" {
		return
	}
	guildID := *event.GuildID
	client := event.Client()

	perms := memberPermissions(client, guildID, msg.Member)
	isOwner := false
	if guild, ok := client.Caches.Guild(guildID); ok {
		isOwner = guild.OwnerID == msg.Author.ID
	}
	if !isOwner && !perms.Has(discord.PermissionAdministrator) && !perms.Has(discord.PermissionManageGuildExpressions) {
		reply(client, event.ChannelID, sys.MsgEmojiNoPermission)
		return
	}

	dir := sys.GlobalConfig.EmojiDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		sys.LogEmoji(sys.MsgEmojiDirUnreadable, dir, err)
		reply(client, event.ChannelID, fmt.Sprintf("❌ Couldn't read the emoji directory (`%s`).", dir))
		return
	}

	existing, err := client.Rest.GetEmojis(guildID, rest.WithCtx(sys.AppContext))
	if err != nil {
		sys.LogEmoji(sys.MsgGenericError, err)
		return
	}
	next := len(existing) + 1

	// Emoji creation is heavily rate limited, pace at one per second.
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	added, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		iconType, ok := iconTypeFor(entry.Name())
		if !ok {
			skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			sys.LogEmoji(sys.MsgEmojiUploadFail, entry.Name(), err)
			skipped++
			continue
		}

		if err := limiter.Wait(sys.AppContext); err != nil {
			break
		}

		name := fmt.Sprintf("emoji_%d", next)
		_, err = client.Rest.CreateEmoji(guildID, discord.EmojiCreate{
			Name:  name,
			Image: *discord.NewIconRaw(iconType, data),
		}, rest.WithCtx(sys.AppContext))
		if err != nil {
			sys.LogEmoji(sys.MsgEmojiUploadFail, entry.Name(), err)
			skipped++
			if sys.IsForbidden(err) {
				reply(client, event.ChannelID, sys.MsgEmojiLimitReached)
				break
			}
			continue
		}
		added++
		next++
	}

	reply(client, event.ChannelID, fmt.Sprintf(sys.MsgEmojiImportReport, added, skipped))
}

func reply(client *bot.Client, channelID snowflake.ID, content string) {
	_, _ = client.Rest.CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetContent(content).
		Build(), rest.WithCtx(sys.AppContext))
}
