package handler

import (
	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// PlatformStores names the stores the platform handler reads.
type PlatformStores struct {
	Platforms  []*component.Collision // stores holding moving platforms
	Characters *component.Collision
	Gravity    *component.Gravity
	Positions  *component.Position // character positions
	Obstacles  []*component.Collision
}

// PlatformHandler carries characters along with a moving platform.
// PlatformMoved events are stamped before now so they run ahead of anything
// else queued this tick.
type PlatformHandler struct {
	deps   *Deps
	stores PlatformStores
	log    *zap.Logger
}

func NewPlatformHandler(deps *Deps, stores PlatformStores) *PlatformHandler {
	return &PlatformHandler{deps: deps, stores: stores, log: deps.Log.Named("platform")}
}

func (h *PlatformHandler) OnEvent(e event.Event) {
	mv, err := event.DecodeMoved(e)
	if err != nil {
		h.log.Warn("bad platform event", zap.Error(err))
		return
	}
	platforms := h.owner(mv.Object)
	if platforms == nil {
		h.log.Warn("moved platform not in any platform store", zap.Int64("object", int64(mv.Object)))
		return
	}
	for _, id := range h.stores.Characters.Members() {
		riding := h.stores.Gravity.Has(id) &&
			h.stores.Gravity.Standing(id) &&
			h.stores.Gravity.StandingOn(id) == mv.Object
		if riding || platforms.CollidingWith(mv.Object, h.stores.Characters, id) {
			h.carry(id, mv.DX, mv.DY)
		}
	}
}

func (h *PlatformHandler) owner(platform ecs.ObjectID) *component.Collision {
	for _, c := range h.stores.Platforms {
		if c.Has(platform) {
			return c
		}
	}
	return nil
}

// carry moves a character by the platform delta unless that pins it inside
// an obstacle, in which case the move is undone.
func (h *PlatformHandler) carry(id ecs.ObjectID, dx, dy float64) {
	pos := h.stores.Positions
	if !pos.Move(id, dx, dy) {
		return
	}
	for _, obstacle := range h.stores.Obstacles {
		if h.stores.Characters.CollidingWithAny(id, obstacle) {
			pos.Move(id, -dx, -dy)
			return
		}
	}
	x, y, _ := pos.At(id)
	m := h.deps.Events
	m.Raise(event.NewMoved(m.Now(), event.CharacterMovedByPlatform, event.Moved{
		Object: id,
		Store:  pos.ID(),
		DX:     dx,
		DY:     dy,
		X:      x,
		Y:      y,
	}))
}
