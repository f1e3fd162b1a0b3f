// Package pacing spaces out calls to the catalog.
package pacing

import (
	"context"
	"time"
)

// Sleeper pauses for a fixed duration, returning early on cancellation.
type Sleeper struct{}

// Pause blocks for d or until ctx is done.
func (Sleeper) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Recorder records requested pauses without sleeping.
type Recorder struct {
	Pauses []time.Duration
}

// Pause records d and reports ctx cancellation.
func (r *Recorder) Pause(ctx context.Context, d time.Duration) error {
	r.Pauses = append(r.Pauses, d)
	return ctx.Err()
}

// Total returns the sum of recorded pauses.
func (r *Recorder) Total() time.Duration {
	var total time.Duration
	for _, d := range r.Pauses {
		total += d
	}
	return total
}
