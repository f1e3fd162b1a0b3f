package pacing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSleeper_Pause(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		cancel  bool
		wantErr error
	}{
		{name: "zero duration returns immediately", d: 0},
		{name: "short pause completes", d: 5 * time.Millisecond},
		{name: "cancelled context aborts", d: time.Hour, cancel: true, wantErr: context.Canceled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tc.cancel {
				cancel()
			}
			err := Sleeper{}.Pause(ctx, tc.d)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRecorder_Total(t *testing.T) {
	var r Recorder
	_ = r.Pause(context.Background(), time.Second)
	_ = r.Pause(context.Background(), 500*time.Millisecond)
	if got := r.Total(); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %v", got)
	}
	if len(r.Pauses) != 2 {
		t.Fatalf("expected 2 pauses, got %d", len(r.Pauses))
	}
}
