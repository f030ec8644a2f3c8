package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"linkvault/entity"
	"linkvault/internal/database"
	"linkvault/lib/sl"
)

// addChannel registers a channel in the registry. The bot must be able to
// see the chat; the persistent invite link is fetched best-effort and only
// stored for reference.
func (t *TgBot) addChannel(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.guard.IsAdmin(chatId) {
		t.plainResponse(chatId, "You don't have permission to use this command\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `/addchannel <channel_id>`\nExample: `/addchannel \\-1001234567890`")
		return nil
	}

	channelId, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		t.plainResponse(chatId, "Invalid channel ID\\. Must be a number\\.")
		return nil
	}

	chat, err := t.client.GetChat(channelId, nil)
	if err != nil {
		t.plainResponse(chatId,
			"Failed to add channel\\. Make sure:\n"+
				"\\- Bot is admin in the channel\n"+
				"\\- Channel ID is correct\n\n"+
				"Error: "+Sanitize(err.Error()))
		return nil
	}

	inviteLink, err := t.client.ExportChatInviteLink(channelId, nil)
	if err != nil {
		t.log.Debug("exporting invite link", slog.Int64("channel_id", channelId), sl.Err(err))
		inviteLink = ""
	}

	channel := &entity.Channel{
		ChannelId:   channelId,
		ChannelName: chat.Title,
		InviteLink:  inviteLink,
		AddedAt:     time.Now().UTC(),
		IsActive:    true,
	}
	if err = channel.Validate(); err != nil {
		t.plainResponse(chatId, "Channel record is invalid: "+Sanitize(err.Error()))
		return nil
	}

	err = t.db.AddChannel(channel)
	if database.IsDuplicate(err) {
		t.plainResponse(chatId, "Channel is already registered\\.")
		return nil
	}
	if err != nil {
		t.reportError(chatId, "/addchannel", err)
		return nil
	}

	t.plainResponse(chatId, fmt.Sprintf(
		"Channel added\\!\n\n*Name:* %s\n*ID:* `%d`",
		Sanitize(chat.Title), channelId,
	))
	return nil
}

// removeChannel drops the registry record and cascades to the channel's
// link records.
func (t *TgBot) removeChannel(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.guard.IsAdmin(chatId) {
		t.plainResponse(chatId, "You don't have permission to use this command\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `/removechannel <channel_id>`")
		return nil
	}

	channelId, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		t.plainResponse(chatId, "Invalid channel ID\\.")
		return nil
	}

	removed, err := t.db.RemoveChannel(channelId)
	if err != nil {
		t.reportError(chatId, "/removechannel", err)
		return nil
	}
	if !removed {
		t.plainResponse(chatId, "Channel not found\\.")
		return nil
	}
	t.plainResponse(chatId, fmt.Sprintf("Channel `%d` removed\\.", channelId))
	return nil
}

// broadcast copies the replied-to message to every registered user.
// Zero users is not an error: the tally simply reads 0 sent, 0 failed.
func (t *TgBot) broadcast(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.guard.IsAdmin(chatId) {
		t.plainResponse(chatId, "You don't have permission to use this command\\.")
		return nil
	}

	source := ctx.EffectiveMessage.ReplyToMessage
	if source == nil {
		t.plainResponse(chatId, "Reply to a message with /broadcast to send it to all users\\.")
		return nil
	}

	users, err := t.db.GetAllUsers()
	if err != nil {
		t.reportError(chatId, "/broadcast", err)
		return nil
	}

	t.plainResponse(chatId, "Starting broadcast\\.\\.\\.")

	var sent, failed int
	for _, user := range users {
		_, err = t.client.CopyMessage(user.UserId, source.Chat.Id, source.MessageId, nil)
		if err != nil {
			failed++
			t.log.Debug("broadcast copy", slog.Int64("user_id", user.UserId), sl.Err(err))
			continue
		}
		sent++
	}

	t.log.Info("broadcast finished", slog.Int("sent", sent), slog.Int("failed", failed))
	t.plainResponse(chatId, fmt.Sprintf(
		"Broadcast completed\\!\nSent: `%d`\nFailed: `%d`", sent, failed,
	))
	return nil
}

func (t *TgBot) ban(_ *tgbotapi.Bot, ctx *ext.Context) error {
	return t.setBanned(ctx, true)
}

func (t *TgBot) unban(_ *tgbotapi.Bot, ctx *ext.Context) error {
	return t.setBanned(ctx, false)
}

func (t *TgBot) setBanned(ctx *ext.Context, banned bool) error {
	chatId := ctx.EffectiveUser.Id
	if !t.guard.IsAdmin(chatId) {
		t.plainResponse(chatId, "You don't have permission to use this command\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `"+Sanitize(args[0])+" <user_id>`")
		return nil
	}
	userId, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		t.plainResponse(chatId, "Invalid user ID\\.")
		return nil
	}

	if err = t.db.SetUserBanned(userId, banned); err != nil {
		t.reportError(chatId, args[0], err)
		return nil
	}
	verb := "banned"
	if !banned {
		verb = "unbanned"
	}
	t.plainResponse(chatId, fmt.Sprintf("User `%d` %s\\.", userId, verb))
	return nil
}
