package home

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/flowy/sys"
)

// Members without Nitro can type :name: for an animated emoji but the
// client won't render it. The relay rewrites those tokens and resends
// the message through a webhook wearing the author's name and avatar,
// then deletes the original.

const nqnWebhookName = "Flowy-NQN"
const emojiCacheTTL = 5 * time.Minute

// Matches already-rendered custom emojis (left untouched) or bare
// :name: tokens (candidates for rewriting).
var emojiTokenRe = regexp.MustCompile(`<a?:\w+:\d+>|:(\w+):`)

type guildEmojiCache struct {
	emojis  map[string]discord.Emoji
	fetched time.Time
}

type nqnWebhook struct {
	ID    snowflake.ID
	Token string
}

var (
	emojiCaches  sync.Map // map[snowflake.ID]*guildEmojiCache
	nqnWebhooks  sync.Map // map[snowflake.ID]nqnWebhook
	emojiFetchMu sync.Mutex
)

func init() {
	sys.RegisterMessageCreateHandler(handleNQNMessage)
}

func animatedEmojis(client *bot.Client, guildID snowflake.ID) map[string]discord.Emoji {
	if val, ok := emojiCaches.Load(guildID); ok {
		cache := val.(*guildEmojiCache)
		if time.Since(cache.fetched) < emojiCacheTTL {
			return cache.emojis
		}
	}

	emojiFetchMu.Lock()
	defer emojiFetchMu.Unlock()

	// Double check after lock
	if val, ok := emojiCaches.Load(guildID); ok {
		cache := val.(*guildEmojiCache)
		if time.Since(cache.fetched) < emojiCacheTTL {
			return cache.emojis
		}
	}

	emojis, err := client.Rest.GetEmojis(guildID, rest.WithCtx(sys.AppContext))
	if err != nil {
		sys.LogNQN(sys.MsgGenericError, err)
		return nil
	}

	byName := make(map[string]discord.Emoji)
	for _, e := range emojis {
		if e.Animated {
			byName[e.Name] = e
		}
	}
	emojiCaches.Store(guildID, &guildEmojiCache{emojis: byName, fetched: time.Now()})
	sys.LogDebug(sys.MsgNQNCacheRefreshed, guildID, len(byName))
	return byName
}

// rewriteEmojiTokens replaces bare :name: tokens that match an animated
// guild emoji. It reports whether anything changed.
func rewriteEmojiTokens(content string, emojis map[string]discord.Emoji) (string, bool) {
	if len(emojis) == 0 {
		return content, false
	}

	changed := false
	out := emojiTokenRe.ReplaceAllStringFunc(content, func(match string) string {
		if match[0] == '<' {
			return match
		}
		name := match[1 : len(match)-1]
		if emoji, ok := emojis[name]; ok {
			changed = true
			return fmt.Sprintf("<a:%s:%s>", emoji.Name, emoji.ID)
		}
		return match
	})
	return out, changed
}

func channelWebhook(client *bot.Client, channelID snowflake.ID) (nqnWebhook, error) {
	if val, ok := nqnWebhooks.Load(channelID); ok {
		return val.(nqnWebhook), nil
	}

	self, _ := client.Caches.SelfUser()
	hooks, err := client.Rest.GetWebhooks(channelID, rest.WithCtx(sys.AppContext))
	if err != nil {
		return nqnWebhook{}, err
	}
	for _, wh := range hooks {
		if incoming, ok := wh.(discord.IncomingWebhook); ok {
			if incoming.User.ID == self.ID && incoming.Name() == nqnWebhookName {
				hook := nqnWebhook{ID: incoming.ID(), Token: incoming.Token}
				nqnWebhooks.Store(channelID, hook)
				return hook, nil
			}
		}
	}

	created, err := client.Rest.CreateWebhook(channelID, discord.WebhookCreate{Name: nqnWebhookName}, rest.WithCtx(sys.AppContext))
	if err != nil {
		return nqnWebhook{}, err
	}
	hook := nqnWebhook{ID: created.ID(), Token: created.Token}
	nqnWebhooks.Store(channelID, hook)
	return hook, nil
}

func handleNQNMessage(event *events.MessageCreate) {
	msg := event.Message
	if msg.Author.Bot || event.GuildID == nil || msg.Content == "" {
		return
	}
	guildID := *event.GuildID
	client := event.Client()

	rewritten, changed := rewriteEmojiTokens(msg.Content, animatedEmojis(client, guildID))
	if !changed {
		return
	}

	hook, err := channelWebhook(client, event.ChannelID)
	if err != nil {
		sys.LogNQN(sys.MsgNQNWebhookFail, event.ChannelID, err)
		return
	}

	member := msg.Member
	displayName := msg.Author.EffectiveName()
	if member != nil && member.Nick != nil && *member.Nick != "" {
		displayName = *member.Nick
	}

	_, err = client.Rest.CreateWebhookMessage(hook.ID, hook.Token, discord.WebhookMessageCreate{
		Content:   rewritten,
		Username:  displayName,
		AvatarURL: msg.Author.EffectiveAvatarURL(),
	}, rest.CreateWebhookMessageParams{Wait: false}, rest.WithCtx(sys.AppContext))
	if err != nil {
		sys.LogNQN(sys.MsgNQNRelayFail, event.ChannelID, err)
		// The webhook may have been deleted out from under us.
		nqnWebhooks.Delete(event.ChannelID)
		return
	}

	if err := client.Rest.DeleteMessage(event.ChannelID, msg.ID, rest.WithCtx(sys.AppContext)); err != nil {
		sys.LogNQN(sys.MsgNQNDeleteFail, msg.ID, err)
	}
}
