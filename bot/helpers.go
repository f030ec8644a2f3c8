package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"linkvault/lib/sl"
)

const maxTelegramMessageLen = 4096

func (t *TgBot) plainResponse(chatId int64, text string) {
	if text == "" {
		t.log.With("id", chatId).Debug("empty message")
		return
	}
	for _, part := range splitMessage(text, maxTelegramMessageLen) {
		t.send(chatId, part, nil)
	}
}

// sendWithKeyboard sends a message with an inline keyboard attached and
// returns the sent message so callers can schedule its deletion. Text over
// the platform limit is split; the keyboard goes on the last part.
func (t *TgBot) sendWithKeyboard(chatId int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) *tgbotapi.Message {
	if text == "" {
		return nil
	}
	parts := splitMessage(text, maxTelegramMessageLen)
	for _, part := range parts[:len(parts)-1] {
		t.send(chatId, part, nil)
	}
	return t.send(chatId, parts[len(parts)-1], &keyboard)
}

// send delivers one MarkdownV2 message, falling back to plain text when the
// markup is rejected.
func (t *TgBot) send(chatId int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) *tgbotapi.Message {
	opts := &tgbotapi.SendMessageOpts{ParseMode: "MarkdownV2"}
	if keyboard != nil {
		opts.ReplyMarkup = *keyboard
	}
	msg, err := t.client.SendMessage(chatId, text, opts)
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Warn("sending message", sl.Err(err))
		fallback := &tgbotapi.SendMessageOpts{}
		if keyboard != nil {
			fallback.ReplyMarkup = *keyboard
		}
		msg, err = t.client.SendMessage(chatId, text, fallback)
		if err != nil {
			t.log.With(slog.Int64("id", chatId)).Error("sending safe message", sl.Err(err))
			return nil
		}
	}
	return msg
}

func Sanitize(input string) string {
	reservedChars := "\\_{}#+-.!|()[]=*"
	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}
	return sanitized
}

func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}
		// Try to split at newline
		cutAt := maxLen
		nlIdx := strings.LastIndex(text[:maxLen], "\n")
		if nlIdx > 0 {
			cutAt = nlIdx + 1
		}
		parts = append(parts, text[:cutAt])
		text = text[cutAt:]
	}
	return parts
}

// ensureUser registers or refreshes the user record and enforces the ban
// axis. Returns false when the user is banned and must not be served.
func (t *TgBot) ensureUser(user *tgbotapi.User) bool {
	if err := t.db.UpsertUser(user.Id, user.Username, user.FirstName); err != nil {
		t.log.Warn("upserting user", slog.Int64("user_id", user.Id), sl.Err(err))
	}
	if err := t.db.TouchUser(user.Id); err != nil {
		t.log.Warn("touching user", slog.Int64("user_id", user.Id), sl.Err(err))
	}
	record, err := t.db.GetUser(user.Id)
	if err != nil {
		t.log.Warn("loading user", slog.Int64("user_id", user.Id), sl.Err(err))
		return true
	}
	if record != nil && record.IsBanned {
		t.plainResponse(user.Id, "You are banned from using this bot\\.")
		return false
	}
	return true
}

// reportError logs the failure and sends a neutral message to the user.
func (t *TgBot) reportError(chatId int64, command string, err error) {
	t.log.Error("bot command failed",
		slog.String("command", command),
		slog.Int64("user_id", chatId),
		sl.Err(err),
	)
	t.plainResponse(chatId, "Something went wrong\\. Please try again later\\.")
}

func (t *TgBot) uptime() string {
	return readableDuration(time.Since(t.startedAt))
}

func readableDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	intervals := []struct {
		name string
		secs int64
	}{
		{"days", 86400},
		{"hours", 3600},
		{"minutes", 60},
		{"seconds", 1},
	}
	var parts []string
	for _, iv := range intervals {
		value := seconds / iv.secs
		if value > 0 {
			seconds -= value * iv.secs
			parts = append(parts, fmt.Sprintf("%d %s", value, iv.name))
		}
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}
