package engine

import "time"

// Countdown is the wall-clock timer attached to a timed attempt. The zero
// value is an unstarted, non-expiring countdown.
type Countdown struct {
	StartedAt time.Time     `json:"startedAt"`
	Limit     time.Duration `json:"limit"`
}

// StartCountdown begins a countdown of the given number of seconds. A
// non-positive limit yields a countdown that never expires.
func StartCountdown(seconds int, now time.Time) Countdown {
	if seconds <= 0 {
		return Countdown{}
	}
	return Countdown{StartedAt: now, Limit: time.Duration(seconds) * time.Second}
}

// Running reports whether the countdown has been started.
func (c Countdown) Running() bool {
	return c.Limit > 0 && !c.StartedAt.IsZero()
}

// Remaining returns the time left; zero once expired or when not running.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if !c.Running() {
		return 0
	}
	left := c.Limit - now.Sub(c.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether a running countdown has run out.
func (c Countdown) Expired(now time.Time) bool {
	return c.Running() && now.Sub(c.StartedAt) >= c.Limit
}
