package invite

import (
	"log/slog"
	"sync"
	"time"

	"linkvault/lib/clock"
	"linkvault/lib/sl"
)

// Scheduler revokes issued invites after their TTL and removes the message
// that displayed them. Tasks are fire-and-forget: nothing waits on them,
// failures are logged and swallowed, and there is no cancellation path —
// a process restart before the delay elapses simply abandons the revoke,
// leaving the platform-side expiry and the sweeper as the backstop.
type Scheduler struct {
	log   *slog.Logger
	tg    Telegram
	clk   clock.Clock
	delay time.Duration
	wg    sync.WaitGroup
}

func NewScheduler(tg Telegram, clk clock.Clock, delay time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		log:   log.With(sl.Module("invite.scheduler")),
		tg:    tg,
		clk:   clk,
		delay: delay,
	}
}

// Schedule arranges revocation of the invite and deletion of the ephemeral
// message once the delay elapses. Pass messageId 0 when there is no message
// to clean up. Returns immediately.
func (s *Scheduler) Schedule(channelId int64, inviteLink string, chatId int64, messageId int64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.clk.After(s.delay)

		// The sweeper may already have purged the record and Telegram may
		// already consider the link expired; both calls stay best-effort.
		if err := s.tg.RevokeInvite(channelId, inviteLink); err != nil {
			s.log.Warn("revoking invite",
				slog.Int64("channel_id", channelId),
				sl.Err(err),
			)
		}
		if messageId != 0 {
			if err := s.tg.DeleteMessage(chatId, messageId); err != nil {
				s.log.Warn("deleting link message",
					slog.Int64("chat_id", chatId),
					slog.Int64("message_id", messageId),
					sl.Err(err),
				)
			}
		}
		s.log.Debug("invite retired", slog.Int64("channel_id", channelId))
	}()
}

// Wait blocks until all scheduled tasks finish. Used by tests together with
// a fake clock; production never calls it.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
