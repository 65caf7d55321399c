package system

import (
	"time"

	"github.com/platformsim/server/internal/core/event"
	coresys "github.com/platformsim/server/internal/core/system"
	"go.uber.org/zap"
)

// DispatchSystem runs one event dispatch pass. Phase 2 (Dispatch).
type DispatchSystem struct {
	guard *event.Guard
	log   *zap.Logger
}

func NewDispatchSystem(guard *event.Guard, log *zap.Logger) *DispatchSystem {
	return &DispatchSystem{guard: guard, log: log}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *DispatchSystem) Update(_ time.Duration) {
	if n := s.guard.HandleEvents(); n > 0 {
		s.log.Debug("events handled", zap.Int("count", n))
	}
}
