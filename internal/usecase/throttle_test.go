package usecase

import (
	"context"
	"testing"
	"time"
)

func TestThrottleSlowDownAndSpeedUp(t *testing.T) {
	t.Parallel()

	throttle := NewThrottleState(150*time.Millisecond, 100*time.Millisecond, 50*time.Millisecond)

	throttle.SlowDown()
	throttle.SlowDown()
	if throttle.Delay != 350*time.Millisecond {
		t.Fatalf("Delay after two slowdowns = %v, want 350ms", throttle.Delay)
	}

	throttle.SpeedUp()
	if throttle.Delay != 300*time.Millisecond {
		t.Fatalf("Delay after speedup = %v, want 300ms", throttle.Delay)
	}
}

func TestThrottleNeverDropsBelowFloor(t *testing.T) {
	t.Parallel()

	throttle := NewThrottleState(150*time.Millisecond, 100*time.Millisecond, 50*time.Millisecond)

	throttle.SpeedUp()
	if throttle.Delay != 150*time.Millisecond {
		t.Fatalf("SpeedUp at floor changed delay to %v", throttle.Delay)
	}

	throttle.SlowDown()
	for i := 0; i < 10; i++ {
		throttle.SpeedUp()
	}
	if throttle.Delay != 150*time.Millisecond {
		t.Fatalf("Delay clamped to %v, want floor 150ms", throttle.Delay)
	}
}

func TestThrottleWaitHonorsCancellation(t *testing.T) {
	t.Parallel()

	throttle := NewThrottleState(time.Minute, time.Second, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := throttle.Wait(ctx); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
