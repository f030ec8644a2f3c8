package invite

import (
	"errors"
	"testing"
	"time"
)

func TestSweepForwardsCurrentTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)

	var cutoff time.Time
	store := &mockStore{
		deleteExpiredLinksFunc: func(now time.Time) (int64, error) {
			cutoff = now
			return 3, nil
		},
	}
	sweeper := NewSweeper(store, clk, time.Hour, discardLogger())

	sweeper.Sweep()

	if !cutoff.Equal(now) {
		t.Errorf("sweep cutoff = %v, want %v", cutoff, now)
	}
}

func TestSweepSurvivesStoreError(t *testing.T) {
	store := &mockStore{
		deleteExpiredLinksFunc: func(time.Time) (int64, error) {
			return 0, errors.New("server selection timeout")
		},
	}
	sweeper := NewSweeper(store, newFakeClock(time.Now()), time.Hour, discardLogger())

	// A failed pass is logged only; the next tick retries.
	sweeper.Sweep()
}

func TestSweeperRunsOnTick(t *testing.T) {
	clk := newFakeClock(time.Now())

	sweeps := make(chan struct{}, 4)
	store := &mockStore{
		deleteExpiredLinksFunc: func(time.Time) (int64, error) {
			sweeps <- struct{}{}
			return 0, nil
		},
	}
	sweeper := NewSweeper(store, clk, time.Hour, discardLogger())
	sweeper.Start()

	for i := 0; i < 2; i++ {
		clk.tickCh <- time.Now()
		select {
		case <-sweeps:
		case <-time.After(time.Second):
			t.Fatal("tick did not trigger a sweep")
		}
	}

	sweeper.Stop()
}
