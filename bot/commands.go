package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"linkvault/entity"
	"linkvault/internal/invite"
	"linkvault/internal/payload"
	"linkvault/lib/sl"
)

func (t *TgBot) start(_ *tgbotapi.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser
	if !t.ensureUser(user) {
		return nil
	}

	// Deep link: /start <payload> or /start req_<payload>
	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) > 1 {
		raw, request := payload.SplitMode(args[1])
		channelId, err := payload.Decode(raw)
		if err != nil {
			t.plainResponse(user.Id, "This link is not valid\\. Ask for a fresh one\\.")
			return nil
		}
		linkType := entity.LinkTypeInvite
		if request {
			linkType = entity.LinkTypeRequest
		}
		t.deliverInvite(user.Id, channelId, linkType)
		return nil
	}

	isAdmin := t.guard.IsAdmin(user.Id)
	name := user.FirstName
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf(
		"*Welcome to LinkVault\\!*\n\n"+
			"Hey *%s*\\! I hand out invite links for protected channels\\. "+
			"Every link is single\\-use and expires after %d minutes\\.\n\n"+
			"Use the buttons below to get started\\.",
		Sanitize(name), t.ttlMinutes(),
	)
	t.sendWithKeyboard(user.Id, text, buildStartMenu(isAdmin))
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser
	if !t.ensureUser(user) {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("*Help & Commands*\n\n")
	sb.WriteString("*For users:*\n")
	sb.WriteString("`/channels` \\- Pick a channel and get an invite link\n")
	sb.WriteString("`/stats` \\- Bot statistics\n")
	sb.WriteString(fmt.Sprintf("Links are single\\-use and expire after %d minutes\\.\n", t.ttlMinutes()))

	if t.guard.IsAdmin(user.Id) {
		sb.WriteString("\n*Admin commands:*\n")
		sb.WriteString("`/addchannel <channel_id>` \\- Register a channel\n")
		sb.WriteString("`/removechannel <channel_id>` \\- Remove a channel\n")
		sb.WriteString("`/broadcast` \\- Reply to a message to send it to all users\n")
		sb.WriteString("`/ban <user_id>` \\- Ban a user\n")
		sb.WriteString("`/unban <user_id>` \\- Lift a ban\n")
	}

	t.sendWithKeyboard(user.Id, sb.String(), buildCloseButton())
	return nil
}

func (t *TgBot) stats(_ *tgbotapi.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser
	if !t.ensureUser(user) {
		return nil
	}

	stats, err := t.db.Stats()
	if err != nil {
		t.reportError(user.Id, "/stats", err)
		return nil
	}
	t.sendWithKeyboard(user.Id, formatStats(stats), buildCloseButton())
	return nil
}

func (t *TgBot) channels(_ *tgbotapi.Bot, ctx *ext.Context) error {
	user := ctx.EffectiveUser
	if !t.ensureUser(user) {
		return nil
	}

	channels, err := t.db.GetActiveChannels()
	if err != nil {
		t.reportError(user.Id, "/channels", err)
		return nil
	}
	if len(channels) == 0 {
		t.plainResponse(user.Id, "No channels available yet\\.")
		return nil
	}

	text := fmt.Sprintf("*Available Channels* \\(%d\\)\n\nSelect a channel to get an invite link:", len(channels))
	t.sendWithKeyboard(user.Id, text, buildChannelListKeyboard(channels, 0, t.config.PageSize))
	return nil
}

// deliverInvite runs the issue flow and replies with the link. The reply is
// ephemeral: the scheduler deletes it and revokes the invite after the TTL.
func (t *TgBot) deliverInvite(chatId int64, channelId int64, linkType entity.LinkType) {
	link, err := t.issuer.Issue(channelId, chatId, linkType)
	if err != nil {
		switch {
		case errors.Is(err, invite.ErrChannelNotFound):
			t.plainResponse(chatId, "That channel is not registered here\\.")
		case errors.Is(err, invite.ErrChannelInactive):
			t.plainResponse(chatId, "That channel is currently disabled\\.")
		case errors.Is(err, invite.ErrIssuanceFailed):
			t.log.Warn("issuing invite", slog.Int64("channel_id", channelId), sl.Err(err))
			t.plainResponse(chatId,
				"Could not create an invite link\\.\n\n"+
					"Make sure the bot is an admin of the channel with permission to invite users\\.")
		default:
			t.reportError(chatId, "issue", err)
		}
		return
	}

	note := "joins immediately"
	if link.LinkType == entity.LinkTypeRequest {
		note = "files a join request for approval"
	}
	text := fmt.Sprintf(
		"*Your invite link*\n\n%s\n\n"+
			"This link %s and expires in %d minutes\\. This message will self\\-destruct\\.",
		Sanitize(link.InviteLink), Sanitize(note), t.ttlMinutes(),
	)
	sent := t.sendWithKeyboard(chatId, text, buildCloseButton())

	var messageId int64
	if sent != nil {
		messageId = sent.MessageId
	}
	t.scheduler.Schedule(channelId, link.InviteLink, chatId, messageId)
}

func (t *TgBot) ttlMinutes() int {
	return int(t.config.LinkTTL.Minutes())
}

func formatStats(stats *entity.Stats) string {
	return fmt.Sprintf(
		"*Bot Statistics*\n\n"+
			"*Users*\n"+
			"Total: `%d`\n"+
			"Active \\(7d\\): `%d`\n\n"+
			"*Channels*\n"+
			"Registered: `%d`\n"+
			"Active links: `%d`\n\n"+
			"*Engagement*\n"+
			"Links issued: `%d`",
		stats.TotalUsers, stats.ActiveUsers,
		stats.TotalChannels, stats.ActiveLinks,
		stats.TotalJoins,
	)
}
