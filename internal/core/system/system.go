package system

import (
	"fmt"
	"time"
)

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: accept and drop client sessions
	PhasePatrol                  // 1: advance moving platforms
	PhaseDispatch                // 2: handle due events
	PhasePostUpdate              // 3: digests, diagnostics
	PhaseCleanup                 // 4: remove disconnected objects
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePatrol:
		return "patrol"
	case PhaseDispatch:
		return "dispatch"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

func typeName(s System) string {
	return fmt.Sprintf("%T", s)
}
