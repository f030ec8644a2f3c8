package invite

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestScheduleRevokesAndDeletes(t *testing.T) {
	clk := newFakeClock(time.Now())

	var mu sync.Mutex
	var revokedChannel int64
	var revokedLink string
	var deletedChat, deletedMessage int64

	tg := &mockTelegram{
		revokeInviteFunc: func(channelId int64, inviteLink string) error {
			mu.Lock()
			revokedChannel, revokedLink = channelId, inviteLink
			mu.Unlock()
			return nil
		},
		deleteMessageFunc: func(chatId int64, messageId int64) error {
			mu.Lock()
			deletedChat, deletedMessage = chatId, messageId
			mu.Unlock()
			return nil
		},
	}
	scheduler := NewScheduler(tg, clk, 5*time.Minute, discardLogger())

	scheduler.Schedule(testChannelId, "https://t.me/+abc", 777, 99)
	clk.fire()
	scheduler.Wait()

	if revokedChannel != testChannelId || revokedLink != "https://t.me/+abc" {
		t.Errorf("revoked (%d, %q)", revokedChannel, revokedLink)
	}
	if deletedChat != 777 || deletedMessage != 99 {
		t.Errorf("deleted message (%d, %d), want (777, 99)", deletedChat, deletedMessage)
	}
}

func TestScheduleSkipsDeleteWithoutMessage(t *testing.T) {
	clk := newFakeClock(time.Now())

	revoked := false
	tg := &mockTelegram{
		revokeInviteFunc: func(int64, string) error {
			revoked = true
			return nil
		},
		deleteMessageFunc: func(int64, int64) error {
			t.Error("DeleteMessage called for messageId 0")
			return nil
		},
	}
	scheduler := NewScheduler(tg, clk, time.Minute, discardLogger())

	scheduler.Schedule(testChannelId, "https://t.me/+abc", 777, 0)
	clk.fire()
	scheduler.Wait()

	if !revoked {
		t.Error("invite was not revoked")
	}
}

func TestScheduleSwallowsFailures(t *testing.T) {
	clk := newFakeClock(time.Now())

	deleted := false
	tg := &mockTelegram{
		revokeInviteFunc: func(int64, string) error {
			return errors.New("link already revoked")
		},
		deleteMessageFunc: func(int64, int64) error {
			deleted = true
			return errors.New("message to delete not found")
		},
	}
	scheduler := NewScheduler(tg, clk, time.Minute, discardLogger())

	// Must not panic and must still attempt the delete after a failed revoke.
	scheduler.Schedule(testChannelId, "https://t.me/+abc", 777, 99)
	clk.fire()
	scheduler.Wait()

	if !deleted {
		t.Error("delete was not attempted after the revoke failed")
	}
}
