package service

import (
	"context"
	"math/rand"
	"time"
)

// Delayer produces the pause inserted before outbound WhatsApp sends so the
// traffic pattern does not look automated.
type Delayer interface {
	Duration() time.Duration
	Wait(ctx context.Context) error
}

type randomDelayer struct {
	min time.Duration
	max time.Duration
}

// NewRandomDelayer returns a Delayer that picks a uniform duration in
// [min, max]. Values are swapped if given out of order.
func NewRandomDelayer(min, max time.Duration) Delayer {
	if max < min {
		min, max = max, min
	}
	return &randomDelayer{min: min, max: max}
}

func (d *randomDelayer) Duration() time.Duration {
	if d.max == d.min {
		return d.min
	}
	return d.min + time.Duration(rand.Int63n(int64(d.max-d.min)+1))
}

func (d *randomDelayer) Wait(ctx context.Context) error {
	timer := time.NewTimer(d.Duration())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type zeroDelayer struct{}

// NewZeroDelayer returns a Delayer that never waits. Used in tests.
func NewZeroDelayer() Delayer { return zeroDelayer{} }

func (zeroDelayer) Duration() time.Duration    { return 0 }
func (zeroDelayer) Wait(context.Context) error { return nil }
