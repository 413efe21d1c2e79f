package client

import (
	"testing"
	"time"
)

func TestExponentialBackoff_Next(t *testing.T) {
	b := &ExponentialBackoff{Base: 100 * time.Millisecond, Max: time.Second, Factor: 2}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for attempt, w := range want {
		if got := b.Next(attempt); got != w {
			t.Errorf("Next(%d) = %v, want %v", attempt, got, w)
		}
	}
	if got := b.Next(-1); got != b.Base {
		t.Errorf("Next(-1) = %v, want %v", got, b.Base)
	}
}

func TestExponentialBackoff_JitterStaysInBounds(t *testing.T) {
	b := &ExponentialBackoff{Base: 100 * time.Millisecond, Max: 5 * time.Second, Factor: 2, Jitter: 0.1}

	for i := 0; i < 100; i++ {
		if got := b.Next(0); got < 90*time.Millisecond || got > 110*time.Millisecond {
			t.Fatalf("Next(0) = %v, want within 10%% of 100ms", got)
		}
	}
}

func TestDefaultBackoff_CapsWait(t *testing.T) {
	b := DefaultBackoff()
	// Max plus 20% jitter.
	limit := 6 * time.Second
	for attempt := 0; attempt < 20; attempt++ {
		if got := b.Next(attempt); got > limit {
			t.Fatalf("Next(%d) = %v, want at most %v", attempt, got, limit)
		}
	}
}
