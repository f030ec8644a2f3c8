// Package bot implements the LinkVault Telegram bot: admin-managed channel
// registry, deep-link requests, and delivery of auto-expiring invite links.
//
// Architecture overview:
//   - tgbot.go     — TgBot struct, lifecycle (Start/Stop), Database interface
//   - tgapi.go     — gotgbot adapter implementing invite.Telegram
//   - commands.go  — User commands: /start (with deep-link payload), /help, /stats, /channels
//   - admin.go     — Admin commands: /addchannel, /removechannel, /broadcast, /ban, /unban
//   - callbacks.go — Inline keyboard builders and callback query handlers
//   - helpers.go   — Shared utilities: Sanitize, plainResponse, reportError
//
// Data flow for a link request (command or deep link):
//
//	guard/ban check → payload decode → issuer mints the invite and persists
//	the record → reply with the link → scheduler revokes the invite and
//	deletes the reply after the TTL. The sweeper runs outside this package.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"

	"linkvault/entity"
	"linkvault/internal/access"
	"linkvault/internal/invite"
	"linkvault/lib/clock"
	"linkvault/lib/sl"
)

// BotConfig holds bot behavior settings loaded from the YAML config file.
type BotConfig struct {
	LinkTTL  time.Duration
	PageSize int
}

// chatClient defines the Telegram calls the command and callback handlers
// make. Satisfied by *gotgbot.Bot; tests substitute a mock.
type chatClient interface {
	SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error)
	GetChat(chatId int64, opts *tgbotapi.GetChatOpts) (*tgbotapi.ChatFullInfo, error)
	ExportChatInviteLink(chatId int64, opts *tgbotapi.ExportChatInviteLinkOpts) (string, error)
	CopyMessage(chatId int64, fromChatId int64, messageId int64, opts *tgbotapi.CopyMessageOpts) (*tgbotapi.MessageId, error)
}

// Database defines the storage operations the bot depends on.
// Implemented by internal/database/mongo.go.
type Database interface {
	AddChannel(channel *entity.Channel) error
	RemoveChannel(channelId int64) (bool, error)
	GetChannel(channelId int64) (*entity.Channel, error)
	GetActiveChannels() ([]*entity.Channel, error)
	UpsertUser(userId int64, username, firstName string) error
	TouchUser(userId int64) error
	GetUser(userId int64) (*entity.User, error)
	GetAllUsers() ([]*entity.User, error)
	SetUserBanned(userId int64, banned bool) error
	Stats() (*entity.Stats, error)
}

// TgBot is the central bot instance. Process-lifetime state (start time for
// uptime, the bot handle for deep links) lives here, not in globals.
type TgBot struct {
	log       *slog.Logger
	api       *tgbotapi.Bot
	client    chatClient
	db        Database
	guard     *access.Guard
	issuer    *invite.Issuer
	scheduler *invite.Scheduler
	updater   *ext.Updater
	startedAt time.Time
	config    BotConfig
}

func NewTgBot(apiKey string, db Database, store invite.Store, guard *access.Guard, clk clock.Clock, log *slog.Logger, cfg BotConfig) (*TgBot, error) {
	if cfg.PageSize == 0 {
		cfg.PageSize = 8
	}
	if cfg.LinkTTL == 0 {
		cfg.LinkTTL = 5 * time.Minute
	}

	tgBot := &TgBot{
		log:    log.With(sl.Module("tgbot")),
		db:     db,
		guard:  guard,
		config: cfg,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api
	tgBot.client = api

	tg := &telegramAPI{api: api}
	tgBot.issuer = invite.NewIssuer(tg, store, clk, cfg.LinkTTL, log)
	tgBot.scheduler = invite.NewScheduler(tg, clk, cfg.LinkTTL, log)

	return tgBot, nil
}

func (t *TgBot) Start() error {
	t.startedAt = time.Now().UTC()

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	// User commands
	dispatcher.AddHandler(handlers.NewCommand("start", t.start))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))
	dispatcher.AddHandler(handlers.NewCommand("stats", t.stats))
	dispatcher.AddHandler(handlers.NewCommand("channels", t.channels))

	// Admin commands
	dispatcher.AddHandler(handlers.NewCommand("addchannel", t.addChannel))
	dispatcher.AddHandler(handlers.NewCommand("removechannel", t.removeChannel))
	dispatcher.AddHandler(handlers.NewCommand("broadcast", t.broadcast))
	dispatcher.AddHandler(handlers.NewCommand("ban", t.ban))
	dispatcher.AddHandler(handlers.NewCommand("unban", t.unban))

	// Callback query handlers
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbMenu), t.onMenuCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbPage), t.onPageCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbChannel), t.onChannelCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbGenLink), t.onGenLinkCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbReqLink), t.onReqLinkCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbDelete), t.onDeleteCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Prefix(cbConfirmDel), t.onConfirmDeleteCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbClose), t.onCloseCallback))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.Equal(cbNoop), t.onNoopCallback))

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("bot started",
		slog.String("username", t.api.Username),
		slog.Duration("link_ttl", t.config.LinkTTL),
	)

	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}
