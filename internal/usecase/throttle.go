package usecase

import (
	"context"
	"time"
)

// ThrottleState is the explicit slow-down/speed-up state applied between
// external fetches. The orchestrator does not know why a fetch failed, only
// that slowing down improves the odds against rate-limit sensitive sites.
type ThrottleState struct {
	Delay    time.Duration
	Floor    time.Duration
	Increase time.Duration
	Decrease time.Duration
}

// NewThrottleState starts at the floor delay.
func NewThrottleState(floor, increase, decrease time.Duration) *ThrottleState {
	return &ThrottleState{
		Delay:    floor,
		Floor:    floor,
		Increase: increase,
		Decrease: decrease,
	}
}

// SlowDown raises the delay after a fetch failure.
func (t *ThrottleState) SlowDown() {
	t.Delay += t.Increase
}

// SpeedUp lowers the delay after a streak of successes, never below the floor.
func (t *ThrottleState) SpeedUp() {
	if t.Delay <= t.Floor {
		return
	}
	t.Delay -= t.Decrease
	if t.Delay < t.Floor {
		t.Delay = t.Floor
	}
}

// Wait sleeps for the current delay or until the context is cancelled.
func (t *ThrottleState) Wait(ctx context.Context) error {
	if t.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(t.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
