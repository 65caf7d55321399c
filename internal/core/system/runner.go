package system

import (
	"runtime/debug"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. A system that panics is
// logged and skipped for the rest of that call; the other systems still run.
type Runner struct {
	systems []System
	sorted  bool
	panics  map[Phase]int
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		systems: make([]System, 0, 8),
		panics:  make(map[Phase]int),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.update(s, dt)
	}
}

// TickPhase runs only the systems of one phase. The game loop uses it to
// interleave phases with its fixed sleeps and to poll connections several
// times per tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.update(s, dt)
		}
	}
}

// Panics returns how many system panics were recovered in phase.
func (r *Runner) Panics(phase Phase) int { return r.panics[phase] }

func (r *Runner) update(s System, dt time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panics[s.Phase()]++
			r.log.Error("system panic recovered",
				zap.Stringer("phase", s.Phase()),
				zap.String("system", typeName(s)),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	s.Update(dt)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
