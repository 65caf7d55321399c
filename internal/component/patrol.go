package component

import (
	"math"

	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/timeline"
	"go.uber.org/zap"
)

// Waypoint is one stop on a patrol route.
type Waypoint struct {
	X, Y  float64
	Pause bool
}

// Patrol drives objects around a cyclic waypoint route at a fixed speed,
// optionally pausing at waypoints.
type Patrol struct {
	*ecs.Table[patrolRow]
	reg *ecs.Registry
	tl  timeline.Timeline
}

type patrolRow struct {
	pos           *Position
	route         []Waypoint
	pauseDuration float64
	speed         float64

	target    int
	paused    bool
	pausedFor float64
	last      float64
	dx, dy    float64
}

func NewPatrol(id ecs.ObjectID, name string, reg *ecs.Registry, tl timeline.Timeline, log *zap.Logger) *Patrol {
	return &Patrol{Table: ecs.NewTable[patrolRow](id, name, log), reg: reg, tl: tl}
}

// Add registers id. The object is assumed to start at route[0] and heads for
// route[1]. speed is in distance units per unit of virtual time.
func (p *Patrol) Add(id, positionStore ecs.ObjectID, route []Waypoint, pauseDuration, speed float64) bool {
	if len(route) == 0 {
		p.Log().Warn("patrol add rejected: empty route", zap.Int64("object", int64(id)))
		return false
	}
	pos, err := ecs.Resolve[*Position](p.reg, positionStore)
	if err != nil {
		p.Log().Warn("patrol add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	rt := make([]Waypoint, len(route))
	copy(rt, route)
	return p.Insert(id, &patrolRow{
		pos:           pos,
		route:         rt,
		pauseDuration: pauseDuration,
		speed:         speed,
		target:        1 % len(rt),
		last:          p.tl.Now(),
	})
}

// Update moves id toward its current target for the virtual time elapsed
// since the previous update and returns the delta applied. Reaching a target
// selects the next one and starts a pause if the target asks for it.
func (p *Patrol) Update(id ecs.ObjectID) (dx, dy float64) {
	r, ok := p.Row(id, "update")
	if !ok {
		return 0, 0
	}
	now := p.tl.Now()
	elapsed := now - r.last
	r.last = now
	r.dx, r.dy = 0, 0
	if p.tl.Paused() || elapsed <= 0 {
		return 0, 0
	}
	if r.paused {
		r.pausedFor += elapsed
		if r.pausedFor >= r.pauseDuration {
			r.paused = false
			r.pausedFor = 0
		}
		return 0, 0
	}

	x, y, ok := r.pos.At(id)
	if !ok {
		return 0, 0
	}
	units := r.speed * elapsed
	tgt := r.route[r.target]
	nx := approach(x, tgt.X, units)
	ny := approach(y, tgt.Y, units)
	r.pos.SetPosition(id, nx, ny)
	r.dx, r.dy = nx-x, ny-y

	if nx == tgt.X && ny == tgt.Y {
		r.paused = tgt.Pause
		r.pausedFor = 0
		r.target = (r.target + 1) % len(r.route)
	}
	return r.dx, r.dy
}

func approach(from, to, units float64) float64 {
	if math.Abs(to-from) <= units {
		return to
	}
	if to > from {
		return from + units
	}
	return from - units
}

// Reanchor restarts id's elapsed-time measurement at the current timeline
// time, so time during which Update was not called is not travelled.
func (p *Patrol) Reanchor(id ecs.ObjectID) {
	if r, ok := p.Row(id, "reanchor"); ok {
		r.last = p.tl.Now()
	}
}

// LastDelta returns the delta applied by the most recent Update.
func (p *Patrol) LastDelta(id ecs.ObjectID) (dx, dy float64) {
	r, ok := p.Row(id, "last delta")
	if !ok {
		return 0, 0
	}
	return r.dx, r.dy
}

// Target returns the index of the waypoint id is heading for, or -1.
func (p *Patrol) Target(id ecs.ObjectID) int {
	r, ok := p.Row(id, "target")
	if !ok {
		return -1
	}
	return r.target
}

func (p *Patrol) Paused(id ecs.ObjectID) bool {
	r, ok := p.Row(id, "paused")
	return ok && r.paused
}

// PositionStore returns the id of the Position store moved by id's patrol.
func (p *Patrol) PositionStore(id ecs.ObjectID) ecs.ObjectID {
	r, ok := p.Row(id, "position store")
	if !ok {
		return ecs.NoObject
	}
	return r.pos.ID()
}
