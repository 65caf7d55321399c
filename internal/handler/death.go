package handler

import (
	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// DeathHandler turns collisions with a death zone into character deaths.
//
// A character that enters a zone is usually reported more than once before
// its death is handled (the move and the gravity step that follows it both
// collide). Only the first collision per (character, zone) raises a death;
// the entry is released when the death is dispatched.
type DeathHandler struct {
	deps       *Deps
	deathZones *component.Collision
	dying      map[deathKey]struct{}
	log        *zap.Logger
}

type deathKey struct {
	object, zone ecs.ObjectID
}

func NewDeathHandler(deps *Deps, deathZones *component.Collision) *DeathHandler {
	return &DeathHandler{
		deps:       deps,
		deathZones: deathZones,
		dying:      make(map[deathKey]struct{}),
		log:        deps.Log.Named("death"),
	}
}

func (h *DeathHandler) OnEvent(e event.Event) {
	if e.Type() == event.CharacterDeath {
		h.release(e)
		return
	}
	c, err := event.DecodeCollision(e)
	if err != nil {
		h.log.Warn("bad collision event", zap.Error(err))
		return
	}
	if !h.deathZones.Has(c.Other) {
		return
	}
	key := deathKey{object: c.Object, zone: c.Other}
	if _, ok := h.dying[key]; ok {
		return
	}
	h.dying[key] = struct{}{}
	h.log.Debug("character died", zap.Int64("object", int64(c.Object)), zap.Int64("zone", int64(c.Other)))
	m := h.deps.Events
	m.Raise(event.NewSubject(m.Now(), event.CharacterDeath, c.Object))
}

// Dying reports how many deaths are raised but not yet dispatched.
func (h *DeathHandler) Dying() int { return len(h.dying) }

func (h *DeathHandler) release(e event.Event) {
	s, err := event.DecodeSubject(e)
	if err != nil {
		return
	}
	for k := range h.dying {
		if k.object == s.Object {
			delete(h.dying, k)
		}
	}
}
