package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle caps osu! requests both by rate and by how many are in flight.
type Throttle struct {
	limiter *rate.Limiter
	slots   chan struct{}
}

func NewThrottle(perMinute, concurrent int) *Throttle {
	t := &Throttle{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		slots:   make(chan struct{}, concurrent),
	}
	for range concurrent {
		t.slots <- struct{}{}
	}
	return t
}

// Acquire blocks until a request may start. The returned func releases the
// in-flight slot.
func (t *Throttle) Acquire(ctx context.Context) (func(), error) {
	select {
	case <-t.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := t.limiter.Wait(ctx); err != nil {
		t.slots <- struct{}{}
		return nil, err
	}
	return func() {
		t.slots <- struct{}{}
	}, nil
}
