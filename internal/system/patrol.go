package system

import (
	"time"

	"github.com/platformsim/server/internal/core/event"
	coresys "github.com/platformsim/server/internal/core/system"
	"github.com/platformsim/server/internal/world"
)

// PatrolSystem advances every moving platform along its route and raises a
// PlatformMoved event for it, even when it did not move. The events are
// stamped offset units in the past so they are handled ahead of anything
// queued for the same tick. Skipped while a replay is playing; platforms
// resume from where they stopped once it ends.
// Phase 1 (Patrol).
type PatrolSystem struct {
	guard     *event.Guard
	world     *world.World
	offset    float64
	suspended bool
}

func NewPatrolSystem(guard *event.Guard, w *world.World, offset float64) *PatrolSystem {
	return &PatrolSystem{guard: guard, world: w, offset: offset}
}

func (s *PatrolSystem) Phase() coresys.Phase { return coresys.PhasePatrol }

func (s *PatrolSystem) Update(_ time.Duration) {
	s.guard.Do(func(m *event.Manager) {
		if m.Replaying() {
			s.suspended = true
			return
		}
		t := m.Now() - s.offset
		store := s.world.MovingPositions.ID()
		for _, id := range s.world.MovingPlatforms() {
			if s.suspended {
				s.world.Patrol.Reanchor(id)
			}
			dx, dy := s.world.Patrol.Update(id)
			x, y, ok := s.world.MovingPositions.At(id)
			if !ok {
				continue
			}
			m.Raise(event.NewMoved(t, event.PlatformMoved, event.Moved{
				Object: id, Store: store, DX: dx, DY: dy, X: x, Y: y,
			}))
		}
		s.suspended = false
	})
}
