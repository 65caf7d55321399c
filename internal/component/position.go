package component

import (
	"github.com/platformsim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Position holds each object's location and collision shape.
type Position struct {
	*ecs.Table[positionRow]
}

type positionRow struct {
	x, y  float64
	shape Shape
}

func NewPosition(id ecs.ObjectID, name string, log *zap.Logger) *Position {
	return &Position{ecs.NewTable[positionRow](id, name, log)}
}

func (p *Position) Add(id ecs.ObjectID, x, y float64, shape Shape) bool {
	return p.Insert(id, &positionRow{x: x, y: y, shape: shape})
}

// At returns the object's position, or (0, 0, false) if absent.
func (p *Position) At(id ecs.ObjectID) (x, y float64, ok bool) {
	r, ok := p.Row(id, "at")
	if !ok {
		return 0, 0, false
	}
	return r.x, r.y, true
}

func (p *Position) SetPosition(id ecs.ObjectID, x, y float64) bool {
	r, ok := p.Row(id, "set position")
	if !ok {
		return false
	}
	r.x, r.y = x, y
	return true
}

func (p *Position) Move(id ecs.ObjectID, dx, dy float64) bool {
	r, ok := p.Row(id, "move")
	if !ok {
		return false
	}
	r.x += dx
	r.y += dy
	return true
}

func (p *Position) Shape(id ecs.ObjectID) (Shape, bool) {
	r, ok := p.Row(id, "shape")
	if !ok {
		return Shape{}, false
	}
	return r.shape, true
}

// Bounds returns the object's current bounding box.
func (p *Position) Bounds(id ecs.ObjectID) (Bounds, bool) {
	r, ok := p.Row(id, "bounds")
	if !ok {
		return Bounds{}, false
	}
	return r.shape.BoundsAt(r.x, r.y), true
}
