package event

import (
	"fmt"
	"runtime/debug"

	"github.com/platformsim/server/internal/core/timeline"
	"go.uber.org/zap"
)

// Handler reacts to dispatched events.
type Handler interface {
	OnEvent(e Event)
}

type registration struct {
	h                    Handler
	notifyWhileReplaying bool
}

// Manager is the discrete-event scheduler: a timestamp-ordered queue, a
// registry of handlers per event type, and the live/replay clock switch.
//
// Manager is not safe for concurrent use; callers outside the dispatch loop
// go through a Guard.
type Manager struct {
	live      timeline.Timeline
	replay    *timeline.Game
	queue     queue
	seq       uint64
	handlers  map[Type][]registration
	replaying bool
	log       *zap.Logger
}

func NewManager(live timeline.Timeline, replay *timeline.Game, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		live:     live,
		replay:   replay,
		queue:    make(queue, 0, 256),
		handlers: make(map[Type][]registration),
		log:      log,
	}
}

// Now returns the current virtual time of the active timeline.
func (m *Manager) Now() float64 {
	if m.replaying {
		return m.replay.Now()
	}
	return m.live.Now()
}

// Raise queues an event. Events that do not match their schema are dropped.
func (m *Manager) Raise(e Event) {
	if err := e.Validate(); err != nil {
		m.log.Warn("dropping malformed event", zap.Error(err))
		return
	}
	m.queue.push(e, m.seq)
	m.seq++
}

// Pending returns the number of queued events.
func (m *Manager) Pending() int {
	return m.queue.Len()
}

// Register subscribes h to t. Handlers for one type run in registration
// order. A handler registered without notifyWhileReplaying is skipped while
// a replay is playing.
func (m *Manager) Register(t Type, h Handler, notifyWhileReplaying bool) {
	if !t.Known() {
		m.log.Warn("register for unknown event type", zap.String("type", string(t)))
		return
	}
	if m.IsRegistered(t, h) {
		return
	}
	m.handlers[t] = append(m.handlers[t], registration{h: h, notifyWhileReplaying: notifyWhileReplaying})
}

// Unregister removes h from t and reports whether it was registered.
func (m *Manager) Unregister(t Type, h Handler) bool {
	regs := m.handlers[t]
	for i, r := range regs {
		if r.h == h {
			m.handlers[t] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) IsRegistered(t Type, h Handler) bool {
	for _, r := range m.handlers[t] {
		if r.h == h {
			return true
		}
	}
	return false
}

// HandleEvents dispatches every queued event whose timestamp is not after
// the current virtual time, earliest first. Events raised by handlers during
// the pass are dispatched in the same pass once they are due, including ones
// stamped before now. Returns the number of events dispatched.
func (m *Manager) HandleEvents() int {
	n := 0
	for {
		next, ok := m.queue.peek()
		if !ok || next.time > m.Now() {
			return n
		}
		m.dispatch(m.queue.pop())
		n++
	}
}

func (m *Manager) dispatch(e Event) {
	regs := m.handlers[e.typ]
	if len(regs) == 0 {
		return
	}
	// Handlers may (un)register while this event is being delivered.
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	for _, r := range snapshot {
		if m.replaying && !r.notifyWhileReplaying {
			continue
		}
		m.safeCall(r.h, e)
	}
}

func (m *Manager) safeCall(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("event handler panic",
				zap.String("type", string(e.typ)),
				zap.String("handler", fmt.Sprintf("%T", h)),
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	h.OnEvent(e)
}

// Replaying reports whether the replay timeline is active.
func (m *Manager) Replaying() bool {
	return m.replaying
}

// StartReplay switches to the replay timeline, restarted at zero and
// running at speed.
func (m *Manager) StartReplay(speed float64) {
	m.replay.Restart()
	m.replay.SetRate(speed)
	m.replaying = true
	m.log.Info("replay started", zap.Float64("speed", speed))
}

// StopReplay switches back to the live timeline.
func (m *Manager) StopReplay() {
	if !m.replaying {
		return
	}
	m.replaying = false
	m.log.Info("replay finished")
}

func (m *Manager) SetReplaySpeed(speed float64) {
	m.replay.SetRate(speed)
}

func (m *Manager) ReplaySpeed() float64 {
	return m.replay.Rate()
}
