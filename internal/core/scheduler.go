package core

// scheduler.go runs periodic maintenance jobs.
//
// The only job today is the table session sweep, which drops server-side
// table sessions nobody has touched within their TTL. A failing run is
// logged and the next tick tries again.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds configuration for a sweeper.
type SweepConfig struct {
	Name     string        // Job name used in logs
	Interval time.Duration // How often to run (default: 1m)
}

// SweepFunc performs one sweep and reports how many items it removed.
type SweepFunc func(ctx context.Context) (int, error)

// StartSweeper runs fn immediately, then every Interval, until ctx is
// cancelled. It blocks; callers run it in a goroutine.
func StartSweeper(ctx context.Context, cfg SweepConfig, fn SweepFunc) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	slog.Info("sweeper started", "job", cfg.Name, "interval", cfg.Interval)

	runSweep(ctx, cfg, fn)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped", "job", cfg.Name)
			return
		case <-ticker.C:
			runSweep(ctx, cfg, fn)
		}
	}
}

// runSweep performs one cycle.
func runSweep(ctx context.Context, cfg SweepConfig, fn SweepFunc) {
	start := time.Now()
	removed, err := fn(ctx)
	if err != nil {
		slog.Error("sweep failed", "job", cfg.Name, "error", err)
		return
	}
	if removed > 0 {
		slog.Info("sweep completed",
			"job", cfg.Name,
			"removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
