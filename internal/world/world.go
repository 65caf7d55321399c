package world

import (
	"fmt"

	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/timeline"
	"github.com/platformsim/server/internal/data"
	"github.com/platformsim/server/internal/scripting"
	"go.uber.org/zap"
)

// World owns every component store of the playfield and the objects seeded
// into them from the level layout.
// Accessed only from the game loop goroutine, or under the event guard.
type World struct {
	ecs *ecs.World

	StaticPositions    *component.Position
	MovingPositions    *component.Position
	CharacterPositions *component.Position
	SpawnPositions     *component.Position
	DeathZonePositions *component.Position

	StaticCollision    *component.Collision
	MovingCollision    *component.Collision
	CharacterCollision *component.Collision
	DeathZoneCollision *component.Collision

	Patrol   *component.Patrol
	Gravity  *component.Gravity
	Movement *component.Movement
	Respawn  *component.Respawn
	Sync     *component.Sync

	statics    []ecs.ObjectID
	movings    []ecs.ObjectID
	spawns     []ecs.ObjectID
	deathZones []ecs.ObjectID

	template data.CharacterTemplate
	tuning   scripting.Tuning
	bindings []component.Binding

	log *zap.Logger
}

// Options carries what Build needs beyond the level itself.
type Options struct {
	Timeline timeline.Timeline
	Tuning   scripting.Tuning
	Bindings []component.Binding
	Log      *zap.Logger
}

// Build registers the stores and seeds platforms, spawn points and death
// zones from lv.
func Build(lv *data.Level, opts Options) (*World, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		ecs:      ecs.NewWorld(),
		template: lv.Character,
		tuning:   opts.Tuning,
		bindings: append([]component.Binding(nil), opts.Bindings...),
		log:      log,
	}
	reg := w.ecs.Registry()
	storeLog := log.Named("store")

	position := func(name string) *component.Position {
		return ecs.Register(reg, func(id ecs.ObjectID) *component.Position {
			return component.NewPosition(id, name, storeLog)
		})
	}
	collision := func(name string) *component.Collision {
		return ecs.Register(reg, func(id ecs.ObjectID) *component.Collision {
			return component.NewCollision(id, name, reg, storeLog)
		})
	}

	w.StaticPositions = position("static-platform-positions")
	w.MovingPositions = position("moving-platform-positions")
	w.CharacterPositions = position("character-positions")
	w.SpawnPositions = position("spawn-positions")
	w.DeathZonePositions = position("death-zone-positions")

	w.StaticCollision = collision("static-platform-collision")
	w.MovingCollision = collision("moving-platform-collision")
	w.CharacterCollision = collision("character-collision")
	w.DeathZoneCollision = collision("death-zone-collision")

	w.Patrol = ecs.Register(reg, func(id ecs.ObjectID) *component.Patrol {
		return component.NewPatrol(id, "platform-patrol", reg, opts.Timeline, storeLog)
	})
	w.Gravity = ecs.Register(reg, func(id ecs.ObjectID) *component.Gravity {
		return component.NewGravity(id, "character-gravity", reg, opts.Timeline, storeLog)
	})
	w.Movement = ecs.Register(reg, func(id ecs.ObjectID) *component.Movement {
		return component.NewMovement(id, "character-movement", reg, opts.Timeline, storeLog)
	})
	w.Respawn = ecs.Register(reg, func(id ecs.ObjectID) *component.Respawn {
		return component.NewRespawn(id, "character-respawn", reg, storeLog)
	})
	w.Sync = ecs.Register(reg, func(id ecs.ObjectID) *component.Sync {
		return component.NewSync(id, "character-sync", reg, storeLog)
	})

	for _, b := range lv.StaticPlatforms {
		id := w.ecs.CreateObject()
		w.StaticPositions.Add(id, b.X, b.Y, component.Rect(b.W, b.H))
		w.StaticCollision.Add(id, w.StaticPositions.ID())
		w.statics = append(w.statics, id)
	}
	for i, mp := range lv.MovingPlatforms {
		id := w.ecs.CreateObject()
		start := mp.Route[0]
		w.MovingPositions.Add(id, start.X, start.Y, component.Rect(mp.W, mp.H))
		w.MovingCollision.Add(id, w.MovingPositions.ID())
		route := make([]component.Waypoint, len(mp.Route))
		for j, p := range mp.Route {
			route[j] = component.Waypoint{X: p.X, Y: p.Y, Pause: p.Pause}
		}
		if !w.Patrol.Add(id, w.MovingPositions.ID(), route, mp.PauseDuration, mp.Speed) {
			return nil, fmt.Errorf("world: moving platform %d: patrol rejected", i)
		}
		w.movings = append(w.movings, id)
	}
	for _, sp := range lv.SpawnPoints {
		id := w.ecs.CreateObject()
		w.SpawnPositions.Add(id, sp.X, sp.Y, component.Circle(sp.Radius))
		w.spawns = append(w.spawns, id)
	}
	for _, b := range lv.DeathZones {
		id := w.ecs.CreateObject()
		w.DeathZonePositions.Add(id, b.X, b.Y, component.Rect(b.W, b.H))
		w.DeathZoneCollision.Add(id, w.DeathZonePositions.ID())
		w.deathZones = append(w.deathZones, id)
	}

	log.Info("world built",
		zap.String("level", lv.Name),
		zap.Int("static_platforms", len(w.statics)),
		zap.Int("moving_platforms", len(w.movings)),
		zap.Int("spawn_points", len(w.spawns)),
		zap.Int("death_zones", len(w.deathZones)),
	)
	return w, nil
}

// Registry returns the store arena.
func (w *World) Registry() *ecs.Registry { return w.ecs.Registry() }

// Platforms returns the Collision stores characters stand on and are
// blocked by.
func (w *World) Platforms() []*component.Collision {
	return []*component.Collision{w.StaticCollision, w.MovingCollision}
}

// MovingPlatforms returns the ids of the patrolling platforms in level order.
func (w *World) MovingPlatforms() []ecs.ObjectID {
	return append([]ecs.ObjectID(nil), w.movings...)
}

// StaticPlatforms returns the ids of the static platforms in level order.
func (w *World) StaticPlatforms() []ecs.ObjectID {
	return append([]ecs.ObjectID(nil), w.statics...)
}

// DeathZones returns the ids of the death zones in level order.
func (w *World) DeathZones() []ecs.ObjectID {
	return append([]ecs.ObjectID(nil), w.deathZones...)
}

// Characters returns the ids of every connected character.
func (w *World) Characters() []ecs.ObjectID {
	return w.CharacterPositions.Members()
}

// Connect allocates a character and seeds it into every character store at
// the template spawn point.
func (w *World) Connect() (id ecs.ObjectID, x, y float64, err error) {
	spawn := w.spawns[w.template.SpawnPoint]
	x, y, ok := w.SpawnPositions.At(spawn)
	if !ok {
		return ecs.NoObject, 0, 0, fmt.Errorf("world: connect: spawn point %d missing", spawn)
	}
	standingOn := ecs.NoObject
	if i := w.template.StartOn; i >= 0 && i < len(w.statics) {
		standingOn = w.statics[i]
	}
	supports := []ecs.ObjectID{w.StaticCollision.ID(), w.MovingCollision.ID()}

	id = w.ecs.CreateObject()
	pos := w.CharacterPositions.ID()
	coll := w.CharacterCollision.ID()
	seeded := w.CharacterPositions.Add(id, x, y, component.Circle(w.tuning.Radius)) &&
		w.CharacterCollision.Add(id, pos) &&
		w.Movement.Add(id, pos, coll, w.bindings, w.tuning.MoveDuration, true, supports) &&
		w.Gravity.Add(id, pos, coll, supports, standingOn, w.tuning.FallDuration) &&
		w.Respawn.Add(id, pos, w.SpawnPositions.ID(), spawn) &&
		w.Sync.Add(id, pos)
	if !seeded {
		w.Registry().RemoveAll(id)
		return ecs.NoObject, 0, 0, fmt.Errorf("world: connect: seeding character %d failed", id)
	}
	w.log.Info("character connected", zap.Int64("object", int64(id)), zap.Float64("x", x), zap.Float64("y", y))
	return id, x, y, nil
}

// Disconnect queues id for removal from every store at the next Flush.
func (w *World) Disconnect(id ecs.ObjectID) {
	w.ecs.MarkForDestruction(id)
}

// Flush removes every disconnected object and returns their ids.
func (w *World) Flush() []ecs.ObjectID {
	flushed := w.ecs.FlushDestroyQueue()
	for _, id := range flushed {
		w.log.Info("character removed", zap.Int64("object", int64(id)))
	}
	return flushed
}
