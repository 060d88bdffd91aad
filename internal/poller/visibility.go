package poller

import (
	"context"
	"log/slog"
	"sync"
)

// Runner is the part of [Poller] that [Visibility] drives.
type Runner interface {
	Start(ctx context.Context)
	Stop()
}

// Visibility starts a [Runner] when the first viewer arrives and stops it
// when the last one leaves.
type Visibility struct {
	ctx    context.Context
	runner Runner
	logger *slog.Logger

	mu      sync.Mutex
	viewers int
}

// NewVisibility returns a Visibility with no viewers. ctx is passed to
// every Start.
func NewVisibility(ctx context.Context, runner Runner, logger *slog.Logger) *Visibility {
	if logger == nil {
		logger = slog.Default()
	}
	return &Visibility{ctx: ctx, runner: runner, logger: logger}
}

// SetViewers records the current viewer count. Crossing from zero starts
// the runner; dropping to zero stops it.
func (v *Visibility) SetViewers(n int) {
	if n < 0 {
		n = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.viewers
	v.viewers = n
	switch {
	case prev == 0 && n > 0:
		v.logger.Info("dashboard visible, resuming polling", "viewers", n)
		v.runner.Start(v.ctx)
	case prev > 0 && n == 0:
		v.logger.Info("dashboard hidden, pausing polling")
		v.runner.Stop()
	}
}

// Viewers returns the last recorded viewer count.
func (v *Visibility) Viewers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewers
}
