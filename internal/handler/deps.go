package handler

import (
	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/config"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/event"
	"github.com/platformsim/server/internal/world"
	"go.uber.org/zap"
)

// PositionUpdate is one outbound absolute-position broadcast.
type PositionUpdate struct {
	Object ecs.ObjectID
	Store  ecs.ObjectID
	X, Y   float64
}

// PositionSink receives position broadcasts. Called from the dispatch loop.
type PositionSink interface {
	PublishPosition(u PositionUpdate)
}

// Deps holds shared dependencies injected into all event handlers.
type Deps struct {
	Events *event.Manager
	World  *world.World
	Config *config.Config
	Sink   PositionSink
	Log    *zap.Logger

	// OnReplayFinished runs after a replay hands control back to the live
	// timeline. Optional.
	OnReplayFinished func()
}

// Handlers is the set of registered event handlers.
type Handlers struct {
	Gravity    *GravityHandler
	Input      *InputHandler
	Collision  *CollisionHandler
	Death      *DeathHandler
	Spawn      *SpawnHandler
	Platform   *PlatformHandler
	Positional *PositionalHandler
	Replay     *ReplayHandler
}

// RegisterAll builds every handler and subscribes it to its event types.
// Handlers that would re-derive recorded physics stay quiet during a replay;
// broadcast and replay machinery keep listening.
func RegisterAll(deps *Deps) *Handlers {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	m := deps.Events
	w := deps.World
	h := &Handlers{
		Positional: NewPositionalHandler(deps.Sink),
		Input:      NewInputHandler(deps),
		Gravity:    NewGravityHandler(deps),
		Collision:  NewCollisionHandler(deps, w.CharacterCollision, []*component.Collision{w.DeathZoneCollision}),
		Death:      NewDeathHandler(deps, w.DeathZoneCollision),
		Spawn:      NewSpawnHandler(deps),
		Platform: NewPlatformHandler(deps, PlatformStores{
			Platforms:  []*component.Collision{w.MovingCollision},
			Characters: w.CharacterCollision,
			Gravity:    w.Gravity,
			Positions:  w.CharacterPositions,
			Obstacles:  w.Platforms(),
		}),
		Replay: NewReplayHandler(deps),
	}

	// Registration order is dispatch order for a shared event type.
	subscribe(m, h.Positional, true,
		event.PlatformMoved,
		event.CharacterMoved,
		event.CharacterMovedByGravity,
		event.CharacterSpawn,
		event.CharacterMovedByPlatform,
	)
	subscribe(m, h.Input, false,
		event.UserInput,
		event.CharacterStillJumping,
		event.CharacterFallStart,
		event.CharacterFallEnd,
	)
	subscribe(m, h.Gravity, false,
		event.CharacterMoved,
		event.CharacterStillFalling,
		event.CharacterJumpStart,
		event.CharacterJumpEnd,
		event.CharacterSpawn,
		event.CharacterMovedByPlatform,
	)
	subscribe(m, h.Collision, false,
		event.CharacterMoved,
		event.CharacterMovedByGravity,
		event.CharacterMovedByPlatform,
	)
	subscribe(m, h.Death, false, event.CharacterCollision)
	// Pending deaths are released during a replay too.
	subscribe(m, h.Death, true, event.CharacterDeath)
	subscribe(m, h.Spawn, false, event.CharacterDeath)
	subscribe(m, h.Platform, false, event.PlatformMoved)
	subscribe(m, h.Replay, true,
		event.ReplayRecordingStart,
		event.ReplayRecordingStop,
		event.ReplayFinished,
	)
	return h
}

func subscribe(m *event.Manager, h event.Handler, notifyWhileReplaying bool, types ...event.Type) {
	for _, t := range types {
		m.Register(t, h, notifyWhileReplaying)
	}
}
