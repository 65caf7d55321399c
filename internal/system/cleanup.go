package system

import (
	"time"

	"github.com/platformsim/server/internal/core/event"
	coresys "github.com/platformsim/server/internal/core/system"
	"github.com/platformsim/server/internal/world"
)

// CleanupSystem flushes the deferred character removal queue at tick end.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	guard *event.Guard
	world *world.World
}

func NewCleanupSystem(guard *event.Guard, w *world.World) *CleanupSystem {
	return &CleanupSystem{guard: guard, world: w}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.guard.Do(func(_ *event.Manager) {
		s.world.Flush()
	})
}
