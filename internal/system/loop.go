package system

import (
	"context"
	"errors"
	"time"

	"github.com/platformsim/server/internal/config"
	coresys "github.com/platformsim/server/internal/core/system"
)

// Loop paces the runner: it polls connections several times, sleeps, runs
// the patrol and dispatch phases, sleeps again, then runs the post-update
// and cleanup phases.
type Loop struct {
	runner *coresys.Runner
	polls  int
	pre    time.Duration
	post   time.Duration
	last   time.Time
}

func NewLoop(runner *coresys.Runner, cfg config.SimulationConfig) *Loop {
	polls := cfg.ConnectionPolls
	if polls < 1 {
		polls = 1
	}
	return &Loop{
		runner: runner,
		polls:  polls,
		pre:    cfg.PreDispatchSleep,
		post:   cfg.PostDispatchSleep,
	}
}

// Tick runs one loop iteration. It returns ctx.Err() if ctx ends during a
// sleep; the phases after the sleep are then skipped.
func (l *Loop) Tick(ctx context.Context) error {
	now := time.Now()
	var dt time.Duration
	if !l.last.IsZero() {
		dt = now.Sub(l.last)
	}
	l.last = now

	for i := 0; i < l.polls; i++ {
		l.runner.TickPhase(coresys.PhaseInput, dt)
	}
	if err := sleep(ctx, l.pre); err != nil {
		return err
	}
	l.runner.TickPhase(coresys.PhasePatrol, dt)
	l.runner.TickPhase(coresys.PhaseDispatch, dt)
	if err := sleep(ctx, l.post); err != nil {
		return err
	}
	l.runner.TickPhase(coresys.PhasePostUpdate, dt)
	l.runner.TickPhase(coresys.PhaseCleanup, dt)
	return nil
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
