package client

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy returns how long Client waits before retry number attempt
// (0 is the first retry). Only network failures and 5xx answers are retried.
type BackoffStrategy interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff waits Base*Factor^attempt, capped at Max, then spreads
// the wait by up to ±Jitter (a fraction in [0, 1]) so that simulated agents
// sharing a daemon do not retry in lockstep.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64
}

// DefaultBackoff is the strategy NewClient starts with. A webhook round trip
// is cheap, so the first retry comes after 100ms and waits never exceed 5s.
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		Base:   100 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: 0.2,
	}
}

// Next implements BackoffStrategy. Negative attempts get Base unchanged.
func (b *ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 0 {
		return b.Base
	}

	wait := math.Min(float64(b.Base)*math.Pow(b.Factor, float64(attempt)), float64(b.Max))
	if b.Jitter > 0 {
		wait *= 1 + b.Jitter*(2*rand.Float64()-1)
	}
	if wait < 0 {
		return 0
	}
	return time.Duration(wait)
}
