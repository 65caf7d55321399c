package component

import (
	"math"

	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/timeline"
	"go.uber.org/zap"
)

const jumpEpsilon = 1e-6

// Binding maps an input key to a movement. A jump binding is not applied at
// once: it is played out one unit per step along each axis.
type Binding struct {
	Key  Key
	DX   float64
	DY   float64
	Jump bool
}

// Movement holds player-directed movement: key bindings, jump progress and
// the collision stores that must stay clear for a move to commit.
//
// The falling flag mirrors Gravity and is kept in sync by the input handler.
type Movement struct {
	*ecs.Table[movementRow]
	reg *ecs.Registry
	tl  timeline.Timeline
}

type movementRow struct {
	pos          *Position
	coll         *Collision
	bindings     []Binding
	moveDuration float64
	checkBlocks  bool
	blockers     []*Collision

	jumping bool
	falling bool
	jump    Binding
	doneX   float64
	doneY   float64
	readyAt float64
}

func NewMovement(id ecs.ObjectID, name string, reg *ecs.Registry, tl timeline.Timeline, log *zap.Logger) *Movement {
	return &Movement{Table: ecs.NewTable[movementRow](id, name, log), reg: reg, tl: tl}
}

// Add registers id. When checkBlocks is set a move is reverted if it makes
// the object overlap any member of blockers.
func (m *Movement) Add(id, positionStore, collisionStore ecs.ObjectID, bindings []Binding, moveDuration float64, checkBlocks bool, blockers []ecs.ObjectID) bool {
	pos, err := ecs.Resolve[*Position](m.reg, positionStore)
	if err != nil {
		m.Log().Warn("movement add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	coll, err := ecs.Resolve[*Collision](m.reg, collisionStore)
	if err != nil {
		m.Log().Warn("movement add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	checks, err := ecs.ResolveAll[*Collision](m.reg, blockers)
	if err != nil {
		m.Log().Warn("movement add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	b := make([]Binding, len(bindings))
	copy(b, bindings)
	return m.Insert(id, &movementRow{
		pos:          pos,
		coll:         coll,
		bindings:     b,
		moveDuration: moveDuration,
		checkBlocks:  checkBlocks,
		blockers:     checks,
		readyAt:      math.Inf(-1),
	})
}

// ProcessInput applies the movement bound to key and then advances any jump
// in progress by one step. A jump binding only starts a jump when the object
// is neither jumping nor falling. Reports whether the object moved.
func (m *Movement) ProcessInput(id ecs.ObjectID, key Key) bool {
	r, ok := m.Row(id, "process input")
	if !ok || m.tl.Paused() {
		return false
	}
	var binding Binding
	found := false
	for _, b := range r.bindings {
		if b.Key == key {
			binding, found = b, true
			break
		}
	}
	if !found {
		m.Log().Warn("no movement bound to key", zap.Int64("object", int64(id)), zap.Stringer("key", key))
		return false
	}

	moved := false
	if binding.Jump {
		if !r.jumping && !r.falling {
			r.jumping = true
			r.jump = binding
			r.doneX, r.doneY = 0, 0
		}
	} else if m.tryMove(id, r, binding.DX, binding.DY) {
		moved = true
	}
	if m.stepJump(id, r) {
		moved = true
	}
	if moved {
		r.readyAt = m.tl.Now() + r.moveDuration
	}
	return moved
}

// ProcessJump advances a jump in progress by one step without any input.
func (m *Movement) ProcessJump(id ecs.ObjectID) bool {
	r, ok := m.Row(id, "process jump")
	if !ok || m.tl.Paused() {
		return false
	}
	moved := m.stepJump(id, r)
	if moved {
		r.readyAt = m.tl.Now() + r.moveDuration
	}
	return moved
}

func (m *Movement) stepJump(id ecs.ObjectID, r *movementRow) bool {
	if !r.jumping {
		return false
	}
	stepX := jumpStep(r.jump.DX, r.doneX)
	stepY := jumpStep(r.jump.DY, r.doneY)
	if (stepX != 0 || stepY != 0) && m.tryMove(id, r, stepX, stepY) {
		r.doneX += stepX
		r.doneY += stepY
		return true
	}
	// Finished, or blocked.
	r.jumping = false
	r.doneX, r.doneY = 0, 0
	return false
}

// jumpStep returns the unit step still owed along one axis, or 0.
func jumpStep(target, done float64) float64 {
	if math.Abs(target-done) < jumpEpsilon || math.Abs(target) < math.Abs(done) {
		return 0
	}
	if target > 0 {
		return 1
	}
	return -1
}

func (m *Movement) tryMove(id ecs.ObjectID, r *movementRow, dx, dy float64) bool {
	if !r.pos.Move(id, dx, dy) {
		return false
	}
	if r.checkBlocks {
		for _, blocker := range r.blockers {
			if r.coll.CollidingWithAny(id, blocker) {
				r.pos.Move(id, -dx, -dy)
				return false
			}
		}
	}
	return true
}

func (m *Movement) Jumping(id ecs.ObjectID) bool {
	r, ok := m.Row(id, "jumping")
	return ok && r.jumping
}

func (m *Movement) Falling(id ecs.ObjectID) bool {
	r, ok := m.Row(id, "falling")
	return ok && r.falling
}

func (m *Movement) SetFalling(id ecs.ObjectID, falling bool) {
	if r, ok := m.Row(id, "set falling"); ok {
		r.falling = falling
	}
}

// Cooldown returns how much virtual time must pass before id may move again.
func (m *Movement) Cooldown(id ecs.ObjectID) float64 {
	r, ok := m.Row(id, "cooldown")
	if !ok {
		return 0
	}
	return math.Max(0, r.readyAt-m.tl.Now())
}

func (m *Movement) MoveDuration(id ecs.ObjectID) float64 {
	r, ok := m.Row(id, "move duration")
	if !ok {
		return 0
	}
	return r.moveDuration
}

// Bindings returns a copy of id's key bindings.
func (m *Movement) Bindings(id ecs.ObjectID) []Binding {
	r, ok := m.Row(id, "bindings")
	if !ok {
		return nil
	}
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}
