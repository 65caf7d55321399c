package handler

import (
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// GravityHandler applies one gravity step to a character whenever it moves,
// spawns or keeps falling, and tracks jump state for the gravity store.
type GravityHandler struct {
	deps *Deps
	log  *zap.Logger
}

func NewGravityHandler(deps *Deps) *GravityHandler {
	return &GravityHandler{deps: deps, log: deps.Log.Named("gravity")}
}

func (h *GravityHandler) OnEvent(e event.Event) {
	switch e.Type() {
	case event.CharacterMoved, event.CharacterMovedByPlatform:
		m, err := event.DecodeMoved(e)
		if err != nil {
			h.log.Warn("bad movement event", zap.Error(err))
			return
		}
		h.step(m.Object)
	case event.CharacterSpawn:
		s, err := event.DecodeSpawn(e)
		if err != nil {
			h.log.Warn("bad spawn event", zap.Error(err))
			return
		}
		h.step(s.Object)
	case event.CharacterStillFalling:
		if s, ok := h.subject(e); ok {
			h.step(s)
		}
	case event.CharacterJumpStart:
		if s, ok := h.subject(e); ok && h.deps.World.Gravity.Has(s) {
			h.deps.World.Gravity.SetJumping(s, true)
		}
	case event.CharacterJumpEnd:
		// Nothing else moves the character once the jump is over, so start
		// the fall here.
		if s, ok := h.subject(e); ok && h.deps.World.Gravity.Has(s) {
			h.deps.World.Gravity.SetJumping(s, false)
			h.step(s)
		}
	}
}

func (h *GravityHandler) subject(e event.Event) (ecs.ObjectID, bool) {
	s, err := event.DecodeSubject(e)
	if err != nil {
		h.log.Warn("bad subject event", zap.Error(err))
		return ecs.NoObject, false
	}
	return s.Object, true
}

// step runs ProcessGravity and reports the outcome as a gravity movement
// event plus fall start, continue and end events.
func (h *GravityHandler) step(id ecs.ObjectID) {
	w := h.deps.World
	m := h.deps.Events
	// The character may have disconnected since the event was raised.
	if !w.Gravity.Has(id) || !w.CharacterPositions.Has(id) {
		return
	}
	wasFalling := w.Gravity.Falling(id)
	x0, y0, _ := w.CharacterPositions.At(id)
	w.Gravity.ProcessGravity(id)
	x1, y1, _ := w.CharacterPositions.At(id)

	now := m.Now()
	m.Raise(event.NewMoved(now, event.CharacterMovedByGravity, event.Moved{
		Object: id,
		Store:  w.CharacterPositions.ID(),
		DX:     x1 - x0,
		DY:     y1 - y0,
		X:      x1,
		Y:      y1,
	}))

	falling := w.Gravity.Falling(id)
	switch {
	case falling:
		if !wasFalling {
			m.Raise(event.NewSubject(now, event.CharacterFallStart, id))
		}
		next := now + h.deps.Config.Simulation.StillFallingDelay + w.Gravity.FallDuration(id)
		m.Raise(event.NewSubject(next, event.CharacterStillFalling, id))
	case wasFalling:
		m.Raise(event.NewSubject(now, event.CharacterFallEnd, id))
	}
}
