package component

import (
	"github.com/platformsim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// Respawn assigns each object a spawn point and teleports it there on demand.
type Respawn struct {
	*ecs.Table[respawnRow]
	reg *ecs.Registry
}

type respawnRow struct {
	pos        *Position
	spawnStore *Position
	spawnPoint ecs.ObjectID
}

func NewRespawn(id ecs.ObjectID, name string, reg *ecs.Registry, log *zap.Logger) *Respawn {
	return &Respawn{Table: ecs.NewTable[respawnRow](id, name, log), reg: reg}
}

// Add registers id. spawnPoint is a member of the Position store spawnStore.
func (s *Respawn) Add(id, positionStore, spawnStore, spawnPoint ecs.ObjectID) bool {
	pos, err := ecs.Resolve[*Position](s.reg, positionStore)
	if err != nil {
		s.Log().Warn("respawn add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	spawns, err := ecs.Resolve[*Position](s.reg, spawnStore)
	if err != nil {
		s.Log().Warn("respawn add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	return s.Insert(id, &respawnRow{pos: pos, spawnStore: spawns, spawnPoint: spawnPoint})
}

// Respawn moves id to its spawn point and returns the new position.
func (s *Respawn) Respawn(id ecs.ObjectID) (x, y float64, ok bool) {
	r, ok := s.Row(id, "respawn")
	if !ok {
		return 0, 0, false
	}
	x, y, ok = r.spawnStore.At(r.spawnPoint)
	if !ok {
		return 0, 0, false
	}
	if !r.pos.SetPosition(id, x, y) {
		return 0, 0, false
	}
	return x, y, true
}

// SpawnPoint returns the spawn point assigned to id.
func (s *Respawn) SpawnPoint(id ecs.ObjectID) (store, point ecs.ObjectID) {
	r, ok := s.Row(id, "spawn point")
	if !ok {
		return ecs.NoObject, ecs.NoObject
	}
	return r.spawnStore.ID(), r.spawnPoint
}

// PositionStore returns the id of the Position store respawn moves id in.
func (s *Respawn) PositionStore(id ecs.ObjectID) ecs.ObjectID {
	r, ok := s.Row(id, "position store")
	if !ok {
		return ecs.NoObject
	}
	return r.pos.ID()
}
