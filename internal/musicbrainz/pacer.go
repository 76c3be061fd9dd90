package musicbrainz

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outbound registry calls. Wait blocks until the caller may
// proceed; grants are issued in the order they were requested.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a minimum spacing between calls, process-wide.
//
// Built on [rate.Limiter] with burst 1: reservations are taken in request
// order under the limiter's lock, so consecutive grants are at least the
// configured interval apart regardless of how many scans arrive in a burst.
type IntervalPacer struct {
	limiter *rate.Limiter
}

// NewPacer creates an IntervalPacer with the given minimum interval.
func NewPacer(minInterval time.Duration) *IntervalPacer {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return &IntervalPacer{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until at least the minimum interval has elapsed since the
// previous grant. It only delays, never rejects; the sole error case is
// context cancellation.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NopPacer never delays. Used in tests.
type NopPacer struct{}

func (NopPacer) Wait(context.Context) error { return nil }
