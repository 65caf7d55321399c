package handler

import (
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// SpawnHandler moves dead characters back to their spawn point.
type SpawnHandler struct {
	deps *Deps
	log  *zap.Logger
}

func NewSpawnHandler(deps *Deps) *SpawnHandler {
	return &SpawnHandler{deps: deps, log: deps.Log.Named("spawn")}
}

func (h *SpawnHandler) OnEvent(e event.Event) {
	s, err := event.DecodeSubject(e)
	if err != nil {
		h.log.Warn("bad death event", zap.Error(err))
		return
	}
	w := h.deps.World
	if !w.Respawn.Has(s.Object) || !w.CharacterPositions.Has(s.Object) {
		return
	}
	x, y, ok := w.Respawn.Respawn(s.Object)
	if !ok {
		return
	}
	m := h.deps.Events
	m.Raise(event.NewSpawn(m.Now(), event.Spawn{
		Object: s.Object,
		Store:  w.CharacterPositions.ID(),
		X:      x,
		Y:      y,
	}))
}
