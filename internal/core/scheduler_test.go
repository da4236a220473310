package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartSweeper_RunsImmediatelyAndOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan struct{})
	go func() {
		StartSweeper(ctx, SweepConfig{Name: "test", Interval: 10 * time.Millisecond}, func(context.Context) (int, error) {
			runs.Add(1)
			return 1, nil
		})
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweeper ran %d times, want at least 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestStartSweeper_ContinuesAfterError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	go StartSweeper(ctx, SweepConfig{Name: "failing", Interval: 5 * time.Millisecond}, func(context.Context) (int, error) {
		runs.Add(1)
		return 0, errors.New("boom")
	})

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper stopped after a failed run")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
