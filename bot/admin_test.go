package bot

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"linkvault/entity"
	"linkvault/internal/access"
)

const (
	testOwnerId    = int64(100)
	testStrangerId = int64(900)
)

// mockDatabase is a function-field mock of the Database interface.
type mockDatabase struct {
	addChannelFunc        func(channel *entity.Channel) error
	removeChannelFunc     func(channelId int64) (bool, error)
	getChannelFunc        func(channelId int64) (*entity.Channel, error)
	getActiveChannelsFunc func() ([]*entity.Channel, error)
	upsertUserFunc        func(userId int64, username, firstName string) error
	touchUserFunc         func(userId int64) error
	getUserFunc           func(userId int64) (*entity.User, error)
	getAllUsersFunc       func() ([]*entity.User, error)
	setUserBannedFunc     func(userId int64, banned bool) error
	statsFunc             func() (*entity.Stats, error)
}

func (m *mockDatabase) AddChannel(channel *entity.Channel) error {
	if m.addChannelFunc != nil {
		return m.addChannelFunc(channel)
	}
	return nil
}

func (m *mockDatabase) RemoveChannel(channelId int64) (bool, error) {
	if m.removeChannelFunc != nil {
		return m.removeChannelFunc(channelId)
	}
	return false, nil
}

func (m *mockDatabase) GetChannel(channelId int64) (*entity.Channel, error) {
	if m.getChannelFunc != nil {
		return m.getChannelFunc(channelId)
	}
	return nil, nil
}

func (m *mockDatabase) GetActiveChannels() ([]*entity.Channel, error) {
	if m.getActiveChannelsFunc != nil {
		return m.getActiveChannelsFunc()
	}
	return nil, nil
}

func (m *mockDatabase) UpsertUser(userId int64, username, firstName string) error {
	if m.upsertUserFunc != nil {
		return m.upsertUserFunc(userId, username, firstName)
	}
	return nil
}

func (m *mockDatabase) TouchUser(userId int64) error {
	if m.touchUserFunc != nil {
		return m.touchUserFunc(userId)
	}
	return nil
}

func (m *mockDatabase) GetUser(userId int64) (*entity.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(userId)
	}
	return nil, nil
}

func (m *mockDatabase) GetAllUsers() ([]*entity.User, error) {
	if m.getAllUsersFunc != nil {
		return m.getAllUsersFunc()
	}
	return nil, nil
}

func (m *mockDatabase) SetUserBanned(userId int64, banned bool) error {
	if m.setUserBannedFunc != nil {
		return m.setUserBannedFunc(userId, banned)
	}
	return nil
}

func (m *mockDatabase) Stats() (*entity.Stats, error) {
	if m.statsFunc != nil {
		return m.statsFunc()
	}
	return &entity.Stats{}, nil
}

// mockChatClient is a function-field mock of the chatClient interface.
// Sent message texts are recorded for assertions.
type mockChatClient struct {
	mu   sync.Mutex
	sent []string

	sendMessageFunc func(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error)
	getChatFunc     func(chatId int64, opts *tgbotapi.GetChatOpts) (*tgbotapi.ChatFullInfo, error)
	exportLinkFunc  func(chatId int64, opts *tgbotapi.ExportChatInviteLinkOpts) (string, error)
	copyMessageFunc func(chatId int64, fromChatId int64, messageId int64, opts *tgbotapi.CopyMessageOpts) (*tgbotapi.MessageId, error)
}

func (m *mockChatClient) SendMessage(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error) {
	m.mu.Lock()
	m.sent = append(m.sent, text)
	m.mu.Unlock()
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(chatId, text, opts)
	}
	return &tgbotapi.Message{MessageId: 1, Chat: tgbotapi.Chat{Id: chatId}}, nil
}

func (m *mockChatClient) GetChat(chatId int64, opts *tgbotapi.GetChatOpts) (*tgbotapi.ChatFullInfo, error) {
	if m.getChatFunc != nil {
		return m.getChatFunc(chatId, opts)
	}
	return &tgbotapi.ChatFullInfo{Id: chatId, Title: "mock channel"}, nil
}

func (m *mockChatClient) ExportChatInviteLink(chatId int64, opts *tgbotapi.ExportChatInviteLinkOpts) (string, error) {
	if m.exportLinkFunc != nil {
		return m.exportLinkFunc(chatId, opts)
	}
	return "", nil
}

func (m *mockChatClient) CopyMessage(chatId int64, fromChatId int64, messageId int64, opts *tgbotapi.CopyMessageOpts) (*tgbotapi.MessageId, error) {
	if m.copyMessageFunc != nil {
		return m.copyMessageFunc(chatId, fromChatId, messageId, opts)
	}
	return &tgbotapi.MessageId{MessageId: messageId}, nil
}

func (m *mockChatClient) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func newTestBot(db Database, client chatClient) *TgBot {
	return &TgBot{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		db:     db,
		client: client,
		guard:  access.NewGuard(testOwnerId, nil),
		config: BotConfig{LinkTTL: 5 * time.Minute, PageSize: 8},
	}
}

func commandContext(userId int64, text string) *ext.Context {
	return &ext.Context{
		EffectiveUser:    &tgbotapi.User{Id: userId, FirstName: "Tester"},
		EffectiveMessage: &tgbotapi.Message{MessageId: 10, Text: text, Chat: tgbotapi.Chat{Id: userId}},
	}
}

func TestRemoveChannelUnauthorized(t *testing.T) {
	db := &mockDatabase{
		removeChannelFunc: func(int64) (bool, error) {
			t.Error("registry mutated by an unauthorized user")
			return false, nil
		},
	}
	client := &mockChatClient{}
	bot := newTestBot(db, client)

	err := bot.removeChannel(nil, commandContext(testStrangerId, "/removechannel -1001234567890"))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	sent := client.sentTexts()
	if len(sent) != 1 || !strings.Contains(sent[0], "permission") {
		t.Errorf("expected a denial reply, got %q", sent)
	}
}

func TestAddChannelNonNumericArgument(t *testing.T) {
	db := &mockDatabase{
		addChannelFunc: func(*entity.Channel) error {
			t.Error("store mutated for an invalid channel id")
			return nil
		},
	}
	client := &mockChatClient{
		getChatFunc: func(int64, *tgbotapi.GetChatOpts) (*tgbotapi.ChatFullInfo, error) {
			t.Error("chat lookup attempted for an invalid channel id")
			return nil, nil
		},
	}
	bot := newTestBot(db, client)

	err := bot.addChannel(nil, commandContext(testOwnerId, "/addchannel not-a-number"))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	sent := client.sentTexts()
	if len(sent) != 1 || !strings.Contains(sent[0], "Invalid channel ID") {
		t.Errorf("expected a validation reply, got %q", sent)
	}
}

func TestBroadcastWithZeroUsers(t *testing.T) {
	db := &mockDatabase{
		getAllUsersFunc: func() ([]*entity.User, error) { return nil, nil },
	}
	client := &mockChatClient{
		copyMessageFunc: func(int64, int64, int64, *tgbotapi.CopyMessageOpts) (*tgbotapi.MessageId, error) {
			t.Error("copyMessage called with no registered users")
			return nil, nil
		},
	}
	bot := newTestBot(db, client)

	ctx := commandContext(testOwnerId, "/broadcast")
	ctx.EffectiveMessage.ReplyToMessage = &tgbotapi.Message{
		MessageId: 5,
		Chat:      tgbotapi.Chat{Id: testOwnerId},
	}

	err := bot.broadcast(nil, ctx)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	sent := client.sentTexts()
	last := sent[len(sent)-1]
	if !strings.Contains(last, "Sent: `0`") || !strings.Contains(last, "Failed: `0`") {
		t.Errorf("expected a 0/0 tally, got %q", last)
	}
}

func TestBroadcastRequiresReply(t *testing.T) {
	db := &mockDatabase{
		getAllUsersFunc: func() ([]*entity.User, error) {
			t.Error("user list loaded without a source message")
			return nil, nil
		},
	}
	client := &mockChatClient{}
	bot := newTestBot(db, client)

	err := bot.broadcast(nil, commandContext(testOwnerId, "/broadcast"))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	sent := client.sentTexts()
	if len(sent) != 1 || !strings.Contains(sent[0], "Reply to a message") {
		t.Errorf("expected usage reply, got %q", sent)
	}
}
