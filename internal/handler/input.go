package handler

import (
	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// InputHandler turns player input into movement, drives jumps step by step
// and maps the recording keys to replay control events.
type InputHandler struct {
	deps *Deps
	log  *zap.Logger
}

func NewInputHandler(deps *Deps) *InputHandler {
	return &InputHandler{deps: deps, log: deps.Log.Named("input")}
}

func (h *InputHandler) OnEvent(e event.Event) {
	w := h.deps.World
	switch e.Type() {
	case event.UserInput:
		in, err := event.DecodeInput(e)
		if err != nil {
			h.log.Warn("bad input event", zap.Error(err))
			return
		}
		h.input(e, in)
	case event.CharacterStillJumping:
		s, err := event.DecodeSubject(e)
		if err != nil {
			h.log.Warn("bad jump event", zap.Error(err))
			return
		}
		h.move(s.Object, func() { w.Movement.ProcessJump(s.Object) })
	case event.CharacterFallStart, event.CharacterFallEnd:
		s, err := event.DecodeSubject(e)
		if err != nil {
			h.log.Warn("bad fall event", zap.Error(err))
			return
		}
		if w.Movement.Has(s.Object) {
			w.Movement.SetFalling(s.Object, e.Type() == event.CharacterFallStart)
		}
	}
}

func (h *InputHandler) input(e event.Event, in event.Input) {
	m := h.deps.Events
	speeds := h.deps.Config.Replay
	key := component.Key(in.Key)
	switch key {
	case component.KeyR:
		m.Raise(event.New(m.Now(), event.ReplayRecordingStart))
		return
	case component.KeyOne:
		m.Raise(event.NewRecordingStop(m.Now(), speeds.FastSpeed))
		return
	case component.KeyTwo:
		m.Raise(event.NewRecordingStop(m.Now(), speeds.NormalSpeed))
		return
	case component.KeyThree:
		m.Raise(event.NewRecordingStop(m.Now(), speeds.SlowSpeed))
		return
	case component.KeyLeft, component.KeyRight, component.KeyUp:
	default:
		h.log.Debug("ignoring unbound key", zap.Int64("object", int64(in.Object)), zap.Int64("key", in.Key))
		return
	}

	w := h.deps.World
	if !w.Movement.Has(in.Object) {
		return
	}
	// The previous move is still playing out: try again once it has.
	if wait := w.Movement.Cooldown(in.Object); wait > 0 {
		m.Raise(e.At(m.Now() + wait))
		return
	}
	h.move(in.Object, func() { w.Movement.ProcessInput(in.Object, key) })
}

// move runs apply and reports the outcome as a movement event plus jump
// start, continue and end events.
func (h *InputHandler) move(id ecs.ObjectID, apply func()) {
	w := h.deps.World
	m := h.deps.Events
	if !w.Movement.Has(id) || !w.CharacterPositions.Has(id) {
		return
	}
	wasJumping := w.Movement.Jumping(id)
	x0, y0, _ := w.CharacterPositions.At(id)
	apply()
	x1, y1, _ := w.CharacterPositions.At(id)

	now := m.Now()
	jumping := w.Movement.Jumping(id)
	// Gravity has to know about the jump before it sees the move.
	if jumping && !wasJumping {
		m.Raise(event.NewSubject(now, event.CharacterJumpStart, id))
	}
	m.Raise(event.NewMoved(now, event.CharacterMoved, event.Moved{
		Object: id,
		Store:  w.CharacterPositions.ID(),
		DX:     x1 - x0,
		DY:     y1 - y0,
		X:      x1,
		Y:      y1,
	}))
	switch {
	case jumping:
		next := now + h.deps.Config.Simulation.StillJumpingDelay + w.Movement.MoveDuration(id)
		m.Raise(event.NewSubject(next, event.CharacterStillJumping, id))
	case wasJumping:
		m.Raise(event.NewSubject(now, event.CharacterJumpEnd, id))
	}
}
