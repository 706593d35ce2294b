package services

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"
)

// Sweeper runs the batch recalculation on a fixed interval so that
// progress eventually reconciles even when a synchronous trigger failed
// (policy writes commit regardless of whether their recalculation
// succeeded). Ticks overlapping a still-running sweep are skipped.
type Sweeper struct {
	recalc   RecalculationService
	interval time.Duration
	running  atomic.Bool
}

// NewSweeper creates a new Sweeper
func NewSweeper(recalc RecalculationService, interval time.Duration) *Sweeper {
	return &Sweeper{recalc: recalc, interval: interval}
}

// Start launches the sweep loop in a goroutine. It stops when ctx is
// cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Progress sweeper started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("Progress sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		slog.Warn("Previous sweep still in flight, skipping tick")
		return
	}
	defer s.running.Store(false)

	summary, err := s.recalc.RecalculateAll(ctx, nil)
	if err != nil {
		slog.Error("Periodic sweep failed", "error", err)
		return
	}
	if len(summary.Errors) > 0 {
		slog.Warn("Periodic sweep finished with per-campaign errors",
			"total", summary.Total, "errors", len(summary.Errors))
	}
}
