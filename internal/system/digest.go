package system

import (
	"time"

	"github.com/platformsim/server/internal/core/event"
	coresys "github.com/platformsim/server/internal/core/system"
	"github.com/platformsim/server/internal/world"
	"go.uber.org/zap"
)

// DigestSystem logs a hash of every position once per interval ticks.
// Phase 3 (PostUpdate).
type DigestSystem struct {
	guard    *event.Guard
	world    *world.World
	interval int
	ticks    int
	log      *zap.Logger
}

// NewDigestSystem returns a digest system; interval <= 0 disables it.
func NewDigestSystem(guard *event.Guard, w *world.World, interval int, log *zap.Logger) *DigestSystem {
	return &DigestSystem{guard: guard, world: w, interval: interval, log: log}
}

func (s *DigestSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *DigestSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	s.guard.Do(func(m *event.Manager) {
		s.log.Info("world digest",
			zap.Uint64("digest", s.world.Digest()),
			zap.Int("characters", len(s.world.Characters())),
			zap.Int("pending", m.Pending()),
			zap.Bool("replaying", m.Replaying()),
		)
	})
}
