// Package scheduler runs the notification sweeps on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/notify"
)

type Sweeper interface {
	RunExpirySweep(ctx context.Context) (notify.SweepResult, error)
	RunReorderSweep(ctx context.Context) (notify.SweepResult, error)
}

// Suppressor reports whether the reorder sweep should be skipped, typically
// because a bill was just created and already ran forced checks.
type Suppressor interface {
	ReorderSweepSuppressed(ctx context.Context) bool
}

type Scheduler struct {
	sweeper    Sweeper
	suppressor Suppressor
	interval   time.Duration
}

func New(sweeper Sweeper, suppressor Suppressor, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{sweeper: sweeper, suppressor: suppressor, interval: interval}
}

// Start blocks, running a tick every interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("notification scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("notification scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs the expiry sweep, then the reorder sweep unless suppressed.
func (s *Scheduler) Tick(ctx context.Context) {
	if _, err := s.sweeper.RunExpirySweep(ctx); err != nil {
		slog.Error("expiry sweep failed", "error", err)
	}

	if s.suppressor != nil && s.suppressor.ReorderSweepSuppressed(ctx) {
		slog.Info("skipping reorder sweep after recent bill")
		return
	}
	if _, err := s.sweeper.RunReorderSweep(ctx); err != nil {
		slog.Error("reorder sweep failed", "error", err)
	}
}
