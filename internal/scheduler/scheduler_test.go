package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/notify"
)

type countingSweeper struct {
	expiry    atomic.Int32
	reorder   atomic.Int32
	expiryErr error
}

func (c *countingSweeper) RunExpirySweep(context.Context) (notify.SweepResult, error) {
	c.expiry.Add(1)
	return notify.SweepResult{}, c.expiryErr
}

func (c *countingSweeper) RunReorderSweep(context.Context) (notify.SweepResult, error) {
	c.reorder.Add(1)
	return notify.SweepResult{}, nil
}

type staticSuppressor bool

func (s staticSuppressor) ReorderSweepSuppressed(context.Context) bool { return bool(s) }

func TestTick(t *testing.T) {
	tests := []struct {
		name        string
		suppressed  bool
		expiryErr   error
		wantReorder int32
	}{
		{"runs both sweeps", false, nil, 1},
		{"skips reorder after a bill", true, nil, 0},
		{"expiry failure does not block reorder", false, errors.New("db down"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := &countingSweeper{expiryErr: tt.expiryErr}
			New(sw, staticSuppressor(tt.suppressed), time.Minute).Tick(context.Background())

			if sw.expiry.Load() != 1 {
				t.Errorf("expected expiry sweep to run once, got %d", sw.expiry.Load())
			}
			if sw.reorder.Load() != tt.wantReorder {
				t.Errorf("expected %d reorder sweeps, got %d", tt.wantReorder, sw.reorder.Load())
			}
		})
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	sw := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		New(sw, nil, 5*time.Millisecond).Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sw.expiry.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
