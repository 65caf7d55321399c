package component

import "math"

// ShapeKind selects the collision geometry of an object.
type ShapeKind uint8

const (
	ShapeRect ShapeKind = iota + 1
	ShapeCircle
)

// Shape is the fixed collision geometry of an object. Positions name the
// top-left corner of the shape's bounding box.
type Shape struct {
	Kind   ShapeKind
	W, H   float64
	Radius float64
}

func Rect(w, h float64) Shape { return Shape{Kind: ShapeRect, W: w, H: h} }
func Circle(r float64) Shape  { return Shape{Kind: ShapeCircle, Radius: r} }

// Size returns the width and height of the shape's bounding box.
func (s Shape) Size() (w, h float64) {
	if s.Kind == ShapeCircle {
		return 2 * s.Radius, 2 * s.Radius
	}
	return s.W, s.H
}

// Bounds is an axis-aligned box.
type Bounds struct {
	X, Y, W, H float64
}

func (s Shape) BoundsAt(x, y float64) Bounds {
	w, h := s.Size()
	return Bounds{X: x, Y: y, W: w, H: h}
}

// Intersects reports whether the boxes overlap with positive area. Boxes that
// only touch along an edge do not intersect.
func (b Bounds) Intersects(o Bounds) bool {
	left := math.Max(b.X, o.X)
	top := math.Max(b.Y, o.Y)
	right := math.Min(b.X+b.W, o.X+o.W)
	bottom := math.Min(b.Y+b.H, o.Y+o.H)
	return left < right && top < bottom
}
