package handler

import (
	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// CollisionHandler reports every overlap between a character that moved and
// the members of the watched Collision stores.
type CollisionHandler struct {
	deps       *Deps
	characters *component.Collision
	watched    []*component.Collision
	log        *zap.Logger
}

func NewCollisionHandler(deps *Deps, characters *component.Collision, watched []*component.Collision) *CollisionHandler {
	return &CollisionHandler{
		deps:       deps,
		characters: characters,
		watched:    watched,
		log:        deps.Log.Named("collision"),
	}
}

func (h *CollisionHandler) OnEvent(e event.Event) {
	mv, err := event.DecodeMoved(e)
	if err != nil {
		h.log.Warn("bad movement event", zap.Error(err))
		return
	}
	if !h.characters.Has(mv.Object) {
		return
	}
	m := h.deps.Events
	for _, store := range h.watched {
		for _, other := range h.characters.Overlapping(mv.Object, store) {
			m.Raise(event.NewCollision(m.Now(), mv.Object, other))
		}
	}
}
