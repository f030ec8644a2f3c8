package invite

import (
	"log/slog"
	"time"

	"linkvault/lib/clock"
	"linkvault/lib/sl"
)

// Sweeper is the durable half of link retirement. In-memory revocation
// timers die with the process, so a recurring pass deletes every persisted
// link record past its expiry, regardless of is_active. It never touches
// the platform-side invite; that either was revoked already or lapsed on
// its own.
type Sweeper struct {
	log      *slog.Logger
	store    Store
	clk      clock.Clock
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

func NewSweeper(store Store, clk clock.Clock, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		log:      log.With(sl.Module("invite.sweeper")),
		store:    store,
		clk:      clk,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the recurring sweep in its own goroutine.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		tick, stop := s.clk.Tick(s.interval)
		defer stop()
		for {
			select {
			case <-tick:
				s.Sweep()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Sweep runs one purge pass. A failed pass is logged and left for the next
// interval; it must never take anything else down with it.
func (s *Sweeper) Sweep() {
	deleted, err := s.store.DeleteExpiredLinks(s.clk.Now())
	if err != nil {
		s.log.Error("sweeping expired links", sl.Err(err))
		return
	}
	if deleted > 0 {
		s.log.Info("swept expired links", slog.Int64("deleted", deleted))
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.done
}
