package component

import (
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/timeline"
	"go.uber.org/zap"
)

// Gravity pulls objects down one unit per step until they rest on a member of
// one of their support stores.
type Gravity struct {
	*ecs.Table[gravityRow]
	reg *ecs.Registry
	tl  timeline.Timeline
}

type gravityRow struct {
	pos          *Position
	coll         *Collision
	supports     []*Collision
	standingOn   ecs.ObjectID
	fallDuration float64
	jumping      bool
	falling      bool
	standing     bool
}

func NewGravity(id ecs.ObjectID, name string, reg *ecs.Registry, tl timeline.Timeline, log *zap.Logger) *Gravity {
	return &Gravity{Table: ecs.NewTable[gravityRow](id, name, log), reg: reg, tl: tl}
}

// Add registers id. supports lists the Collision stores the object can rest
// on. New members start standing, neither jumping nor falling.
func (g *Gravity) Add(id, positionStore, collisionStore ecs.ObjectID, supports []ecs.ObjectID, standingOn ecs.ObjectID, fallDuration float64) bool {
	pos, err := ecs.Resolve[*Position](g.reg, positionStore)
	if err != nil {
		g.Log().Warn("gravity add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	coll, err := ecs.Resolve[*Collision](g.reg, collisionStore)
	if err != nil {
		g.Log().Warn("gravity add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	checks, err := ecs.ResolveAll[*Collision](g.reg, supports)
	if err != nil {
		g.Log().Warn("gravity add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	return g.Insert(id, &gravityRow{
		pos:          pos,
		coll:         coll,
		supports:     checks,
		standingOn:   standingOn,
		fallDuration: fallDuration,
		standing:     true,
	})
}

// ProcessGravity applies one step. A jumping object is left alone. Otherwise
// the object drops one unit; if that overlaps a support it is put back and
// marks itself standing on the first support hit, else it stays down and
// is falling. Nothing changes while the timeline is paused.
func (g *Gravity) ProcessGravity(id ecs.ObjectID) {
	r, ok := g.Row(id, "process gravity")
	if !ok || g.tl.Paused() || r.jumping {
		return
	}
	if !r.pos.Move(id, 0, 1) {
		return
	}
	for _, support := range r.supports {
		for _, other := range support.Members() {
			if other == id {
				continue
			}
			if r.coll.CollidingWith(id, support, other) {
				r.pos.Move(id, 0, -1)
				r.standing = true
				r.falling = false
				r.standingOn = other
				return
			}
		}
	}
	r.standing = false
	r.falling = true
	r.standingOn = ecs.NoObject
}

func (g *Gravity) Jumping(id ecs.ObjectID) bool {
	r, ok := g.Row(id, "jumping")
	return ok && r.jumping
}

func (g *Gravity) SetJumping(id ecs.ObjectID, jumping bool) {
	if r, ok := g.Row(id, "set jumping"); ok {
		r.jumping = jumping
	}
}

func (g *Gravity) Falling(id ecs.ObjectID) bool {
	r, ok := g.Row(id, "falling")
	return ok && r.falling
}

func (g *Gravity) SetFalling(id ecs.ObjectID, falling bool) {
	if r, ok := g.Row(id, "set falling"); ok {
		r.falling = falling
	}
}

func (g *Gravity) Standing(id ecs.ObjectID) bool {
	r, ok := g.Row(id, "standing")
	return ok && r.standing
}

func (g *Gravity) SetStanding(id ecs.ObjectID, standing bool) {
	if r, ok := g.Row(id, "set standing"); ok {
		r.standing = standing
	}
}

// StandingOn returns the object id rests on, or ecs.NoObject.
func (g *Gravity) StandingOn(id ecs.ObjectID) ecs.ObjectID {
	r, ok := g.Row(id, "standing on")
	if !ok {
		return ecs.NoObject
	}
	return r.standingOn
}

func (g *Gravity) SetStandingOn(id, other ecs.ObjectID) {
	if r, ok := g.Row(id, "set standing on"); ok {
		r.standingOn = other
	}
}

// FallDuration is the virtual time one fall step takes.
func (g *Gravity) FallDuration(id ecs.ObjectID) float64 {
	r, ok := g.Row(id, "fall duration")
	if !ok {
		return 0
	}
	return r.fallDuration
}
