package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"linkvault/entity"
	"linkvault/internal/payload"
)

// Callback data prefixes for inline keyboard buttons.
// Telegram limits callback data to 64 bytes, so prefixes are kept short.
// Format: prefix + value (e.g., "ch:-1001234567890", "pg:2").
const (
	cbMenu       = "m:"  // m:start, m:help, m:stats, m:links, m:admin, m:astats
	cbPage       = "pg:" // pg:<page>
	cbChannel    = "ch:" // ch:<channel_id>
	cbGenLink    = "gl:" // gl:<channel_id> direct single-use link
	cbReqLink    = "rl:" // rl:<channel_id> join-request link
	cbDelete     = "dl:" // dl:<channel_id> ask for confirmation
	cbConfirmDel = "dc:" // dc:<channel_id> confirmed delete
	cbClose      = "close"
	cbNoop       = "noop"
)

// --- Keyboard builders ---

func buildStartMenu(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			{Text: "Get Links", CallbackData: cbMenu + "links"},
			{Text: "Help", CallbackData: cbMenu + "help"},
		},
		{
			{Text: "Statistics", CallbackData: cbMenu + "stats"},
		},
	}
	if isAdmin {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: "Admin Panel", CallbackData: cbMenu + "admin"},
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildAdminPanel() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "Manage Channels", CallbackData: cbMenu + "links"},
			},
			{
				{Text: "Bot Stats", CallbackData: cbMenu + "astats"},
			},
			{
				{Text: "« Back to Menu", CallbackData: cbMenu + "start"},
			},
		},
	}
}

// buildChannelListKeyboard lays out channel buttons two per row with
// previous/next navigation when the registry spills over one page.
func buildChannelListKeyboard(channels []*entity.Channel, page, pageSize int) tgbotapi.InlineKeyboardMarkup {
	totalPages := (len(channels)-1)/pageSize + 1
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * pageSize
	end := start + pageSize
	if end > len(channels) {
		end = len(channels)
	}
	pageChannels := channels[start:end]

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, channel := range pageChannels {
		name := channel.ChannelName
		if len(name) > 20 {
			name = name[:20] + "..."
		}
		row = append(row, tgbotapi.InlineKeyboardButton{
			Text:         name,
			CallbackData: cbChannel + strconv.FormatInt(channel.ChannelId, 10),
		})
		if len(row) == 2 || i == len(pageChannels)-1 {
			rows = append(rows, row)
			row = nil
		}
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.InlineKeyboardButton{
			Text: "« Previous", CallbackData: cbPage + strconv.Itoa(page-1),
		})
	}
	nav = append(nav, tgbotapi.InlineKeyboardButton{
		Text: fmt.Sprintf("%d/%d", page+1, totalPages), CallbackData: cbNoop,
	})
	if page < totalPages-1 {
		nav = append(nav, tgbotapi.InlineKeyboardButton{
			Text: "Next »", CallbackData: cbPage + strconv.Itoa(page+1),
		})
	}
	rows = append(rows, nav)

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		{Text: "« Back to Menu", CallbackData: cbMenu + "start"},
	})
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildChannelActionMenu(channelId int64) tgbotapi.InlineKeyboardMarkup {
	idStr := strconv.FormatInt(channelId, 10)
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "Generate Link", CallbackData: cbGenLink + idStr},
				{Text: "Request Link", CallbackData: cbReqLink + idStr},
			},
			{
				{Text: "Delete Channel", CallbackData: cbDelete + idStr},
			},
			{
				{Text: "« Back to Channels", CallbackData: cbMenu + "links"},
			},
		},
	}
}

func buildConfirmDelete(channelId int64) tgbotapi.InlineKeyboardMarkup {
	idStr := strconv.FormatInt(channelId, 10)
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "Yes, Delete", CallbackData: cbConfirmDel + idStr},
				{Text: "Cancel", CallbackData: cbChannel + idStr},
			},
		},
	}
}

func buildCloseButton() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{{Text: "Close", CallbackData: cbClose}},
		},
	}
}

// --- Callback handlers ---
// All callback handlers follow the same pattern:
//  1. Touch the user record and enforce the ban/admin axis
//  2. Parse callback data (trim prefix)
//  3. Act and edit the message in-place
//  4. Answer the callback query (removes loading spinner)

// editOrSend replaces the originating message when it is still accessible,
// otherwise falls back to a fresh message.
func (t *TgBot) editOrSend(cq *tgbotapi.CallbackQuery, chatId int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if msg := cq.Message; msg != nil {
		if im, ok := msg.(tgbotapi.Message); ok {
			_, _, err := t.api.EditMessageText(text, &tgbotapi.EditMessageTextOpts{
				ChatId:      chatId,
				MessageId:   im.MessageId,
				ParseMode:   "MarkdownV2",
				ReplyMarkup: keyboard,
			})
			if err == nil {
				return
			}
		}
	}
	t.sendWithKeyboard(chatId, text, keyboard)
}

func (t *TgBot) answer(cq *tgbotapi.CallbackQuery, text string, alert bool) {
	_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: text, ShowAlert: alert})
}

func (t *TgBot) touchCallbackUser(cq *tgbotapi.CallbackQuery) bool {
	if err := t.db.TouchUser(cq.From.Id); err == nil {
		if user, err := t.db.GetUser(cq.From.Id); err == nil && user != nil && user.IsBanned {
			t.answer(cq, "You are banned from using this bot", true)
			return false
		}
	}
	return true
}

// onMenuCallback routes the static menu buttons: start, help, stats,
// links, admin, astats.
func (t *TgBot) onMenuCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id
	if !t.touchCallbackUser(cq) {
		return nil
	}

	switch strings.TrimPrefix(cq.Data, cbMenu) {
	case "start":
		isAdmin := t.guard.IsAdmin(chatId)
		text := fmt.Sprintf(
			"*LinkVault*\n\nSingle\\-use invite links that expire after %d minutes\\.",
			t.ttlMinutes(),
		)
		t.editOrSend(cq, chatId, text, buildStartMenu(isAdmin))
		t.answer(cq, "", false)

	case "help":
		t.editOrSend(cq, chatId,
			fmt.Sprintf("Pick a channel under *Get Links* and I will mint a fresh invite\\. "+
				"Links are single\\-use and expire after %d minutes\\.", t.ttlMinutes()),
			buildCloseButton())
		t.answer(cq, "", false)

	case "stats":
		stats, err := t.db.Stats()
		if err != nil {
			t.answer(cq, "Error occurred", false)
			return nil
		}
		t.editOrSend(cq, chatId, formatStats(stats), buildCloseButton())
		t.answer(cq, "", false)

	case "links":
		t.showChannelList(cq, chatId, 0)

	case "admin":
		if !t.guard.IsAdmin(chatId) {
			t.answer(cq, "Access denied", true)
			return nil
		}
		t.editOrSend(cq, chatId, "*Admin Panel*\n\nSelect an option:", buildAdminPanel())
		t.answer(cq, "", false)

	case "astats":
		if !t.guard.IsAdmin(chatId) {
			t.answer(cq, "Access denied", true)
			return nil
		}
		stats, err := t.db.Stats()
		if err != nil {
			t.answer(cq, "Error occurred", false)
			return nil
		}
		t.editOrSend(cq, chatId, t.formatAdminStats(stats), buildCloseButton())
		t.answer(cq, "", false)

	default:
		t.answer(cq, "Unknown action", false)
	}
	return nil
}

func (t *TgBot) showChannelList(cq *tgbotapi.CallbackQuery, chatId int64, page int) {
	channels, err := t.db.GetActiveChannels()
	if err != nil {
		t.answer(cq, "Error occurred", false)
		return
	}
	if len(channels) == 0 {
		t.answer(cq, "No channels available", true)
		return
	}
	text := fmt.Sprintf("*Available Channels* \\(%d\\)\n\nSelect a channel:", len(channels))
	t.editOrSend(cq, chatId, text, buildChannelListKeyboard(channels, page, t.config.PageSize))
	t.answer(cq, "", false)
}

func (t *TgBot) onPageCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	if !t.touchCallbackUser(cq) {
		return nil
	}
	page, err := strconv.Atoi(strings.TrimPrefix(cq.Data, cbPage))
	if err != nil {
		t.answer(cq, "Invalid page", false)
		return nil
	}
	t.showChannelList(cq, cq.From.Id, page)
	return nil
}

// onChannelCallback shows a channel. Admins get the action menu with the
// shareable deep links; everyone else gets a direct invite immediately.
func (t *TgBot) onChannelCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id
	if !t.touchCallbackUser(cq) {
		return nil
	}

	channelId, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, cbChannel), 10, 64)
	if err != nil {
		t.answer(cq, "Invalid channel", false)
		return nil
	}

	if !t.guard.IsAdmin(chatId) {
		t.answer(cq, "Generating link...", false)
		t.deliverInvite(chatId, channelId, entity.LinkTypeInvite)
		return nil
	}

	channel, err := t.db.GetChannel(channelId)
	if err != nil || channel == nil {
		t.answer(cq, "Channel not found", true)
		return nil
	}
	t.editOrSend(cq, chatId, t.formatChannelInfo(channel), buildChannelActionMenu(channelId))
	t.answer(cq, "", false)
	return nil
}

func (t *TgBot) onGenLinkCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	return t.issueFromCallback(ctx, cbGenLink, entity.LinkTypeInvite)
}

func (t *TgBot) onReqLinkCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	return t.issueFromCallback(ctx, cbReqLink, entity.LinkTypeRequest)
}

func (t *TgBot) issueFromCallback(ctx *ext.Context, prefix string, linkType entity.LinkType) error {
	cq := ctx.CallbackQuery
	if !t.touchCallbackUser(cq) {
		return nil
	}
	channelId, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, prefix), 10, 64)
	if err != nil {
		t.answer(cq, "Invalid channel", false)
		return nil
	}
	t.answer(cq, "Generating link...", false)
	t.deliverInvite(cq.From.Id, channelId, linkType)
	return nil
}

func (t *TgBot) onDeleteCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id
	if !t.guard.IsAdmin(chatId) {
		t.answer(cq, "Access denied", true)
		return nil
	}
	channelId, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, cbDelete), 10, 64)
	if err != nil {
		t.answer(cq, "Invalid channel", false)
		return nil
	}
	t.editOrSend(cq, chatId,
		fmt.Sprintf("Delete channel `%d` and all of its link records?", channelId),
		buildConfirmDelete(channelId))
	t.answer(cq, "", false)
	return nil
}

func (t *TgBot) onConfirmDeleteCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id
	if !t.guard.IsAdmin(chatId) {
		t.answer(cq, "Access denied", true)
		return nil
	}
	channelId, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, cbConfirmDel), 10, 64)
	if err != nil {
		t.answer(cq, "Invalid channel", false)
		return nil
	}
	removed, err := t.db.RemoveChannel(channelId)
	if err != nil {
		t.reportError(chatId, "delete:callback", err)
		t.answer(cq, "Error occurred", false)
		return nil
	}
	if !removed {
		t.answer(cq, "Channel not found", true)
		return nil
	}
	t.editOrSend(cq, chatId, fmt.Sprintf("Channel `%d` removed\\.", channelId), buildCloseButton())
	t.answer(cq, "Channel removed", false)
	return nil
}

func (t *TgBot) onCloseCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	if msg := cq.Message; msg != nil {
		if im, ok := msg.(tgbotapi.Message); ok {
			_, _ = t.api.DeleteMessage(im.Chat.Id, im.MessageId, nil)
		}
	}
	t.answer(cq, "", false)
	return nil
}

func (t *TgBot) onNoopCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.answer(ctx.CallbackQuery, "", false)
	return nil
}

// --- text builders ---

func (t *TgBot) formatChannelInfo(channel *entity.Channel) string {
	encoded := payload.Encode(channel.ChannelId)
	direct := fmt.Sprintf("https://t.me/%s?start=%s", t.api.Username, encoded)
	request := fmt.Sprintf("https://t.me/%s?start=%s%s", t.api.Username, payload.RequestPrefix, encoded)

	state := "active"
	if !channel.IsActive {
		state = "disabled"
	}
	return fmt.Sprintf(
		"*Channel Information*\n\n"+
			"*Name:* %s\n"+
			"*ID:* `%d`\n"+
			"*State:* `%s`\n"+
			"*Links issued:* `%d`\n"+
			"*Added:* `%s`\n\n"+
			"*Share deep links:*\n"+
			"Direct: %s\n"+
			"Request: %s",
		Sanitize(channel.ChannelName),
		channel.ChannelId,
		state,
		channel.TotalJoins,
		channel.AddedAt.Format("2006-01-02"),
		Sanitize(direct),
		Sanitize(request),
	)
}

func (t *TgBot) formatAdminStats(stats *entity.Stats) string {
	engagement := 0.0
	if stats.TotalUsers > 0 {
		engagement = float64(stats.ActiveUsers) / float64(stats.TotalUsers) * 100
	}
	return fmt.Sprintf(
		"*Admin Dashboard*\n\n"+
			"*System*\n"+
			"Uptime: `%s`\n\n"+
			"*Users*\n"+
			"Total: `%d`\n"+
			"Active \\(7d\\): `%d`\n"+
			"Engagement: `%s%%`\n\n"+
			"*Channels*\n"+
			"Registered: `%d`\n"+
			"Active links: `%d`\n"+
			"Links issued: `%d`",
		t.uptime(),
		stats.TotalUsers, stats.ActiveUsers,
		fmt.Sprintf("%.1f", engagement),
		stats.TotalChannels, stats.ActiveLinks, stats.TotalJoins,
	)
}
