package world

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/ecs"
)

// Placement is the absolute position of one object in one Position store.
type Placement struct {
	Object ecs.ObjectID
	Store  ecs.ObjectID
	X, Y   float64
}

// Snapshot returns the position of every platform and character, platforms
// first.
func (w *World) Snapshot() []Placement {
	var out []Placement
	for _, pos := range []*component.Position{w.StaticPositions, w.MovingPositions, w.CharacterPositions} {
		for _, id := range pos.Members() {
			x, y, _ := pos.At(id)
			out = append(out, Placement{Object: id, Store: pos.ID(), X: x, Y: y})
		}
	}
	return out
}

// Digest hashes every placement. The result does not depend on iteration
// order, so two worlds in the same state digest equal.
func (w *World) Digest() uint64 {
	var sum uint64
	var buf [32]byte
	for _, p := range w.Snapshot() {
		binary.LittleEndian.PutUint64(buf[0:], uint64(p.Object))
		binary.LittleEndian.PutUint64(buf[8:], uint64(p.Store))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(p.Y))
		sum += xxhash.Sum64(buf[:])
	}
	return sum
}
