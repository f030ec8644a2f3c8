package entity

import (
	"testing"
	"time"
)

func TestLinkValid(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(5 * time.Minute)
	link := Link{
		CreatedAt: created,
		ExpiresAt: expires,
		IsActive:  true,
	}

	cases := []struct {
		name   string
		now    time.Time
		active bool
		want   bool
	}{
		{"fresh", created, true, true},
		{"inside window", created.Add(4 * time.Minute), true, true},
		{"exactly at expiry", expires, true, false},
		{"past expiry", expires.Add(time.Second), true, false},
		{"retired early", created.Add(time.Minute), false, false},
	}
	for _, c := range cases {
		link.IsActive = c.active
		if got := link.Valid(c.now); got != c.want {
			t.Errorf("%s: Valid(%v) = %v, want %v", c.name, c.now, got, c.want)
		}
	}
}
