package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stub struct {
	phase Phase
	name  string
	log   *[]string
}

func (p stub) Phase() Phase { return p.phase }
func (p stub) Update(_ time.Duration) { *p.log = append(*p.log, p.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner(zap.NewNop())
	r.Register(stub{PhaseCleanup, "cleanup", &log})
	r.Register(stub{PhaseDispatch, "dispatch-a", &log})
	r.Register(stub{PhaseInput, "input", &log})
	r.Register(stub{PhaseDispatch, "dispatch-b", &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input", "dispatch-a", "dispatch-b", "cleanup"}, log)

	log = nil
	r.TickPhase(PhaseDispatch, time.Millisecond)
	assert.Equal(t, []string{"dispatch-a", "dispatch-b"}, log)
}

func TestPhaseNames(t *testing.T) {
	assert.Equal(t, "patrol", PhasePatrol.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

type panicky struct{ phase Phase }

func (p panicky) Phase() Phase { return p.phase }
func (p panicky) Update(_ time.Duration) { panic("boom") }

func TestRunnerRecoversSystemPanic(t *testing.T) {
	var log []string
	r := NewRunner(zap.NewNop())
	r.Register(panicky{PhaseInput})
	r.Register(stub{PhaseInput, "input", &log})
	r.Register(stub{PhaseCleanup, "cleanup", &log})

	assert.NotPanics(t, func() { r.Tick(time.Millisecond) })
	assert.Equal(t, []string{"input", "cleanup"}, log)
	assert.Equal(t, 1, r.Panics(PhaseInput))
	assert.Zero(t, r.Panics(PhaseCleanup))
}
