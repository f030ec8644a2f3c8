package invite

import (
	"io"
	"log/slog"
	"time"

	"linkvault/entity"
)

// fakeClock drives the scheduler's delay and the sweeper's ticker from the
// tests instead of real time.
type fakeClock struct {
	now     time.Time
	afterCh chan time.Time
	tickCh  chan time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{
		now:     now,
		afterCh: make(chan time.Time, 1),
		tickCh:  make(chan time.Time),
	}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) After(time.Duration) <-chan time.Time { return f.afterCh }

func (f *fakeClock) Tick(time.Duration) (<-chan time.Time, func()) {
	return f.tickCh, func() {}
}

// fire releases everything blocked on After.
func (f *fakeClock) fire() {
	f.afterCh <- f.now
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTelegram is a function-field mock of the Telegram interface.
type mockTelegram struct {
	createInviteFunc  func(channelId int64, linkType entity.LinkType, name string, expireAt time.Time) (string, error)
	revokeInviteFunc  func(channelId int64, inviteLink string) error
	deleteMessageFunc func(chatId int64, messageId int64) error
}

func (m *mockTelegram) CreateInvite(channelId int64, linkType entity.LinkType, name string, expireAt time.Time) (string, error) {
	if m.createInviteFunc != nil {
		return m.createInviteFunc(channelId, linkType, name, expireAt)
	}
	return "https://t.me/+mock", nil
}

func (m *mockTelegram) RevokeInvite(channelId int64, inviteLink string) error {
	if m.revokeInviteFunc != nil {
		return m.revokeInviteFunc(channelId, inviteLink)
	}
	return nil
}

func (m *mockTelegram) DeleteMessage(chatId int64, messageId int64) error {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(chatId, messageId)
	}
	return nil
}

// mockStore is a function-field mock of the Store interface.
type mockStore struct {
	getChannelFunc         func(channelId int64) (*entity.Channel, error)
	saveLinkFunc           func(link *entity.Link) error
	incrementJoinsFunc     func(channelId int64) error
	deleteExpiredLinksFunc func(now time.Time) (int64, error)
}

func (m *mockStore) GetChannel(channelId int64) (*entity.Channel, error) {
	if m.getChannelFunc != nil {
		return m.getChannelFunc(channelId)
	}
	return nil, nil
}

func (m *mockStore) SaveLink(link *entity.Link) error {
	if m.saveLinkFunc != nil {
		return m.saveLinkFunc(link)
	}
	return nil
}

func (m *mockStore) IncrementChannelJoins(channelId int64) error {
	if m.incrementJoinsFunc != nil {
		return m.incrementJoinsFunc(channelId)
	}
	return nil
}

func (m *mockStore) DeleteExpiredLinks(now time.Time) (int64, error) {
	if m.deleteExpiredLinksFunc != nil {
		return m.deleteExpiredLinksFunc(now)
	}
	return 0, nil
}
