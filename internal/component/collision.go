package component

import (
	"github.com/platformsim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Collision groups hitboxes by role (static platforms, characters, death
// zones). Each member's geometry lives in a Position store.
type Collision struct {
	*ecs.Table[collisionRow]
	reg *ecs.Registry
}

type collisionRow struct {
	pos *Position
}

func NewCollision(id ecs.ObjectID, name string, reg *ecs.Registry, log *zap.Logger) *Collision {
	return &Collision{Table: ecs.NewTable[collisionRow](id, name, log), reg: reg}
}

// Add registers id with the Position store that holds its shape.
func (c *Collision) Add(id, positionStore ecs.ObjectID) bool {
	pos, err := ecs.Resolve[*Position](c.reg, positionStore)
	if err != nil {
		c.Log().Warn("collision add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	return c.Insert(id, &collisionRow{pos: pos})
}

// PositionStore returns the id of the Position store holding id's shape.
func (c *Collision) PositionStore(id ecs.ObjectID) ecs.ObjectID {
	r, ok := c.Row(id, "position store")
	if !ok {
		return ecs.NoObject
	}
	return r.pos.ID()
}

func (c *Collision) bounds(id ecs.ObjectID) (Bounds, bool) {
	r, ok := c.Get(id)
	if !ok {
		return Bounds{}, false
	}
	return r.pos.Bounds(id)
}

// CollidingWith reports whether a (a member of c) overlaps b (a member of other).
func (c *Collision) CollidingWith(a ecs.ObjectID, other *Collision, b ecs.ObjectID) bool {
	if !c.Has(a) {
		c.Log().Warn("collision test on absent object", zap.Int64("object", int64(a)))
		return false
	}
	if !other.Has(b) {
		other.Log().Warn("collision test against absent object", zap.Int64("object", int64(b)))
		return false
	}
	ab, ok := c.bounds(a)
	if !ok {
		return false
	}
	bb, ok := other.bounds(b)
	if !ok {
		return false
	}
	return ab.Intersects(bb)
}

// CollidingWithAny reports whether a overlaps any member of other except itself.
func (c *Collision) CollidingWithAny(a ecs.ObjectID, other *Collision) bool {
	ab, ok := c.boundsOf(a)
	if !ok {
		return false
	}
	hit := false
	other.Each(func(b ecs.ObjectID, r *collisionRow) {
		if hit || b == a {
			return
		}
		if bb, ok := r.pos.Bounds(b); ok && ab.Intersects(bb) {
			hit = true
		}
	})
	return hit
}

// Overlapping returns every member of other that a overlaps, in member order.
func (c *Collision) Overlapping(a ecs.ObjectID, other *Collision) []ecs.ObjectID {
	ab, ok := c.boundsOf(a)
	if !ok {
		return nil
	}
	var out []ecs.ObjectID
	other.Each(func(b ecs.ObjectID, r *collisionRow) {
		if b == a {
			return
		}
		if bb, ok := r.pos.Bounds(b); ok && ab.Intersects(bb) {
			out = append(out, b)
		}
	})
	return out
}

func (c *Collision) boundsOf(a ecs.ObjectID) (Bounds, bool) {
	if !c.Has(a) {
		c.Log().Warn("collision test on absent object", zap.Int64("object", int64(a)))
		return Bounds{}, false
	}
	return c.bounds(a)
}
