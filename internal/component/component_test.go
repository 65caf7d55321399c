package component

import (
	"math"
	"testing"
	"time"

	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stores struct {
	reg       *ecs.Registry
	clock     *timeline.ManualClock
	game      *timeline.Game
	pos       *Position
	platforms *Collision
	chars     *Collision
	gravity   *Gravity
	movement  *Movement
	patrol    *Patrol
}

func newStores(t *testing.T) *stores {
	t.Helper()
	log := zap.NewNop()
	s := &stores{reg: ecs.NewRegistry(ecs.NewIDAllocator())}
	s.clock = timeline.NewManualClock(time.Unix(0, 0))
	s.game = timeline.NewGame(1, timeline.NewReal(0.001, s.clock))
	s.pos = ecs.Register(s.reg, func(id ecs.ObjectID) *Position { return NewPosition(id, "position", log) })
	s.platforms = ecs.Register(s.reg, func(id ecs.ObjectID) *Collision { return NewCollision(id, "platforms", s.reg, log) })
	s.chars = ecs.Register(s.reg, func(id ecs.ObjectID) *Collision { return NewCollision(id, "characters", s.reg, log) })
	s.gravity = ecs.Register(s.reg, func(id ecs.ObjectID) *Gravity { return NewGravity(id, "gravity", s.reg, s.game, log) })
	s.movement = ecs.Register(s.reg, func(id ecs.ObjectID) *Movement { return NewMovement(id, "movement", s.reg, s.game, log) })
	s.patrol = ecs.Register(s.reg, func(id ecs.ObjectID) *Patrol { return NewPatrol(id, "patrol", s.reg, s.game, log) })
	return s
}

func (s *stores) platform(x, y, w, h float64) ecs.ObjectID {
	id := s.reg.IDs().Next()
	s.pos.Add(id, x, y, Rect(w, h))
	s.platforms.Add(id, s.pos.ID())
	return id
}

func (s *stores) character(x, y float64, shape Shape) ecs.ObjectID {
	id := s.reg.IDs().Next()
	s.pos.Add(id, x, y, shape)
	s.chars.Add(id, s.pos.ID())
	s.gravity.Add(id, s.pos.ID(), s.chars.ID(), []ecs.ObjectID{s.platforms.ID()}, ecs.NoObject, 3)
	s.movement.Add(id, s.pos.ID(), s.chars.ID(), []Binding{
		{Key: KeyLeft, DX: -1},
		{Key: KeyRight, DX: 1},
		{Key: KeyUp, DY: -3, Jump: true},
	}, 3, true, []ecs.ObjectID{s.platforms.ID()})
	return id
}

func (s *stores) at(t *testing.T, id ecs.ObjectID) (float64, float64) {
	t.Helper()
	x, y, ok := s.pos.At(id)
	require.True(t, ok)
	return x, y
}

func TestPositionAbsentDefaults(t *testing.T) {
	s := newStores(t)
	x, y, ok := s.pos.At(42)
	assert.False(t, ok)
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.False(t, s.pos.Move(42, 1, 1))
	assert.False(t, s.pos.Remove(42))

	require.True(t, s.pos.Add(42, 1, 2, Rect(3, 4)))
	assert.False(t, s.pos.Add(42, 9, 9, Rect(1, 1)))
	b, ok := s.pos.Bounds(42)
	require.True(t, ok)
	assert.Equal(t, Bounds{X: 1, Y: 2, W: 3, H: 4}, b)
	require.True(t, s.pos.Remove(42))
	assert.False(t, s.pos.Has(42))
}

func TestStoreAddRejectsWrongStoreType(t *testing.T) {
	s := newStores(t)
	assert.False(t, s.chars.Add(100, s.gravity.ID()))
	assert.False(t, s.chars.Has(100))
	assert.False(t, s.gravity.Add(100, s.pos.ID(), s.pos.ID(), nil, ecs.NoObject, 0))
}

func TestCollisionIsSymmetric(t *testing.T) {
	cases := []struct {
		name   string
		a, b   Bounds
		expect bool
	}{
		{"overlap", Bounds{0, 0, 10, 10}, Bounds{5, 5, 10, 10}, true},
		{"contained", Bounds{0, 0, 10, 10}, Bounds{2, 2, 2, 2}, true},
		{"edge touch", Bounds{0, 0, 10, 10}, Bounds{10, 0, 10, 10}, false},
		{"apart", Bounds{0, 0, 10, 10}, Bounds{50, 50, 1, 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStores(t)
			a := s.platform(tc.a.X, tc.a.Y, tc.a.W, tc.a.H)
			b := s.reg.IDs().Next()
			s.pos.Add(b, tc.b.X, tc.b.Y, Rect(tc.b.W, tc.b.H))
			s.chars.Add(b, s.pos.ID())

			assert.Equal(t, tc.expect, s.platforms.CollidingWith(a, s.chars, b))
			assert.Equal(t, tc.expect, s.chars.CollidingWith(b, s.platforms, a))
		})
	}
}

func TestCollidingWithAnySkipsSelf(t *testing.T) {
	s := newStores(t)
	a := s.platform(0, 0, 10, 10)
	assert.False(t, s.platforms.CollidingWithAny(a, s.platforms))

	b := s.platform(5, 5, 10, 10)
	s.platform(100, 100, 10, 10)
	assert.True(t, s.platforms.CollidingWithAny(a, s.platforms))
	assert.Equal(t, []ecs.ObjectID{b}, s.platforms.Overlapping(a, s.platforms))
	assert.False(t, s.platforms.CollidingWithAny(999, s.platforms))
}

func TestGravityFallsWithoutSupport(t *testing.T) {
	s := newStores(t)
	s.platform(500, 500, 100, 50)
	id := s.character(50, 100, Rect(10, 10))

	s.gravity.ProcessGravity(id)
	x, y := s.at(t, id)
	assert.Equal(t, 50.0, x)
	assert.Equal(t, 101.0, y)
	assert.True(t, s.gravity.Falling(id))
	assert.False(t, s.gravity.Standing(id))
	assert.Equal(t, ecs.NoObject, s.gravity.StandingOn(id))
}

func TestGravityRestsOnSupport(t *testing.T) {
	s := newStores(t)
	p := s.platform(0, 111, 100, 50)
	id := s.character(50, 100, Rect(10, 10))

	s.gravity.ProcessGravity(id)
	_, y := s.at(t, id)
	require.Equal(t, 101.0, y)
	require.True(t, s.gravity.Falling(id))

	s.gravity.ProcessGravity(id)
	_, y = s.at(t, id)
	assert.Equal(t, 101.0, y, "bottom edge touches the platform top")
	assert.True(t, s.gravity.Standing(id))
	assert.False(t, s.gravity.Falling(id))
	assert.Equal(t, p, s.gravity.StandingOn(id))
}

func TestGravitySkipsJumpingAndPaused(t *testing.T) {
	s := newStores(t)
	id := s.character(0, 0, Rect(10, 10))

	s.gravity.SetJumping(id, true)
	s.gravity.ProcessGravity(id)
	_, y := s.at(t, id)
	assert.Zero(t, y)

	s.gravity.SetJumping(id, false)
	s.game.Pause()
	s.gravity.ProcessGravity(id)
	_, y = s.at(t, id)
	assert.Zero(t, y)
	assert.False(t, s.gravity.Falling(id))

	assert.False(t, s.gravity.Falling(999))
	assert.Equal(t, ecs.NoObject, s.gravity.StandingOn(999))
}

func TestMovementAppliesBinding(t *testing.T) {
	s := newStores(t)
	id := s.character(50, 0, Rect(10, 10))

	assert.True(t, s.movement.ProcessInput(id, KeyRight))
	x, _ := s.at(t, id)
	assert.Equal(t, 51.0, x)
	assert.InDelta(t, 3, s.movement.Cooldown(id), 1e-9)

	s.clock.Advance(5 * time.Millisecond)
	assert.Zero(t, s.movement.Cooldown(id))
	assert.False(t, s.movement.ProcessInput(id, KeyR), "unbound key")
}

func TestMovementRevertsWhenBlocked(t *testing.T) {
	s := newStores(t)
	s.platform(61, 0, 10, 10)
	id := s.character(50, 0, Rect(10, 10))

	assert.True(t, s.movement.ProcessInput(id, KeyRight))
	assert.False(t, s.movement.ProcessInput(id, KeyRight))
	x, _ := s.at(t, id)
	assert.Equal(t, 51.0, x)
}

func TestJumpAdvancesOneUnitPerStep(t *testing.T) {
	s := newStores(t)
	id := s.character(0, 100, Rect(10, 10))

	require.True(t, s.movement.ProcessInput(id, KeyUp))
	assert.True(t, s.movement.Jumping(id))
	_, y := s.at(t, id)
	assert.Equal(t, 99.0, y)

	assert.True(t, s.movement.ProcessJump(id))
	assert.True(t, s.movement.ProcessJump(id))
	_, y = s.at(t, id)
	assert.Equal(t, 97.0, y)
	assert.True(t, s.movement.Jumping(id))

	assert.False(t, s.movement.ProcessJump(id))
	assert.False(t, s.movement.Jumping(id))
}

func TestJumpEndsWhenBlocked(t *testing.T) {
	s := newStores(t)
	s.platform(0, 88, 10, 10)
	id := s.character(0, 100, Rect(10, 10))

	require.True(t, s.movement.ProcessInput(id, KeyUp))
	assert.True(t, s.movement.ProcessJump(id))
	_, y := s.at(t, id)
	require.Equal(t, 98.0, y)

	assert.False(t, s.movement.ProcessJump(id))
	assert.False(t, s.movement.Jumping(id))
	_, y = s.at(t, id)
	assert.Equal(t, 98.0, y)
}

func TestJumpNotStartedWhileFalling(t *testing.T) {
	s := newStores(t)
	id := s.character(0, 100, Rect(10, 10))
	s.movement.SetFalling(id, true)

	assert.False(t, s.movement.ProcessInput(id, KeyUp))
	assert.False(t, s.movement.Jumping(id))
}

func TestPatrolMovesAndPauses(t *testing.T) {
	s := newStores(t)
	id := s.reg.IDs().Next()
	s.pos.Add(id, 0, 0, Rect(100, 50))
	require.True(t, s.patrol.Add(id, s.pos.ID(), []Waypoint{
		{X: 0, Y: 0},
		{X: 10, Y: 0, Pause: true},
	}, 20, 0.5))

	s.clock.Advance(10 * time.Millisecond)
	dx, dy := s.patrol.Update(id)
	assert.Equal(t, 5.0, dx)
	assert.Zero(t, dy)

	s.clock.Advance(20 * time.Millisecond)
	dx, _ = s.patrol.Update(id)
	assert.Equal(t, 5.0, dx, "clamped at the waypoint")
	assert.True(t, s.patrol.Paused(id))
	assert.Equal(t, 0, s.patrol.Target(id))

	s.clock.Advance(10 * time.Millisecond)
	dx, _ = s.patrol.Update(id)
	assert.Zero(t, dx)
	assert.True(t, s.patrol.Paused(id))

	s.clock.Advance(10 * time.Millisecond)
	s.patrol.Update(id)
	assert.False(t, s.patrol.Paused(id))

	s.clock.Advance(4 * time.Millisecond)
	dx, _ = s.patrol.Update(id)
	assert.Equal(t, -2.0, dx)
	ldx, _ := s.patrol.LastDelta(id)
	assert.Equal(t, -2.0, ldx)
	assert.Equal(t, -1, s.patrol.Target(999))
}

func TestRespawnTeleportsToSpawnPoint(t *testing.T) {
	s := newStores(t)
	log := zap.NewNop()
	spawns := ecs.Register(s.reg, func(id ecs.ObjectID) *Position { return NewPosition(id, "spawns", log) })
	respawn := ecs.Register(s.reg, func(id ecs.ObjectID) *Respawn { return NewRespawn(id, "respawn", s.reg, log) })
	point := s.reg.IDs().Next()
	spawns.Add(point, 50, 0, Circle(50))
	id := s.character(300, 900, Circle(50))
	require.True(t, respawn.Add(id, s.pos.ID(), spawns.ID(), point))

	x, y, ok := respawn.Respawn(id)
	require.True(t, ok)
	assert.Equal(t, 50.0, x)
	assert.Zero(t, y)
	px, py := s.at(t, id)
	assert.Equal(t, x, px)
	assert.Equal(t, y, py)

	_, _, ok = respawn.Respawn(999)
	assert.False(t, ok)
}

func TestSyncApply(t *testing.T) {
	s := newStores(t)
	sync := ecs.Register(s.reg, func(id ecs.ObjectID) *Sync { return NewSync(id, "sync", s.reg, zap.NewNop()) })
	id := s.character(10, 20, Rect(1, 1))
	require.True(t, sync.Add(id, s.pos.ID()))

	dx, dy, err := sync.Apply(PositionUpdate{Code: UpdateAbsolute, Object: id, X: 15, Y: 10})
	require.NoError(t, err)
	assert.Equal(t, 5.0, dx)
	assert.Equal(t, -10.0, dy)

	_, _, err = sync.Apply(PositionUpdate{Code: UpdateRelative, Object: id, X: 1, Y: 1})
	require.NoError(t, err)
	snap, ok := sync.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, PositionUpdate{Code: UpdateAbsolute, Object: id, X: 16, Y: 11}, snap)

	_, _, err = sync.Apply(PositionUpdate{Code: UpdateSuccess, Object: id})
	assert.ErrorIs(t, err, ErrUnknownCode)
	_, _, err = sync.Apply(PositionUpdate{Code: UpdateAbsolute, Object: 999})
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestSyncApplyRejectsNonFinitePositions(t *testing.T) {
	s := newStores(t)
	sync := ecs.Register(s.reg, func(id ecs.ObjectID) *Sync { return NewSync(id, "sync", s.reg, zap.NewNop()) })
	id := s.character(10, 20, Rect(1, 1))
	require.True(t, sync.Add(id, s.pos.ID()))

	_, _, err := sync.Apply(PositionUpdate{Code: UpdateRelative, Object: id, X: 1e308})
	require.NoError(t, err)
	_, _, err = sync.Apply(PositionUpdate{Code: UpdateRelative, Object: id, X: 1e308})
	assert.ErrorIs(t, err, ErrNonFinite)
	_, _, err = sync.Apply(PositionUpdate{Code: UpdateAbsolute, Object: id, X: math.NaN()})
	assert.ErrorIs(t, err, ErrNonFinite)
	_, _, err = sync.Apply(PositionUpdate{Code: UpdateAbsolute, Object: id, Y: math.Inf(-1)})
	assert.ErrorIs(t, err, ErrNonFinite)

	x, y, ok := s.pos.At(id)
	require.True(t, ok)
	assert.Equal(t, 10+1e308, x, "rejected updates leave the position alone")
	assert.Equal(t, 20.0, y)
}

func TestPositionUpdateText(t *testing.T) {
	var u PositionUpdate
	require.NoError(t, u.UnmarshalText([]byte("1 7 12.5 -3")))
	assert.Equal(t, PositionUpdate{Code: UpdateAbsolute, Object: 7, X: 12.5, Y: -3}, u)

	b, err := u.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1 7 12.5 -3", string(b))

	assert.Error(t, u.UnmarshalText([]byte("1 7 x 3")))
	assert.Error(t, u.UnmarshalText([]byte("1 7")))
	assert.ErrorIs(t, u.UnmarshalText([]byte("2 7 NaN 0")), ErrNonFinite)
	assert.ErrorIs(t, u.UnmarshalText([]byte("2 7 0 +Inf")), ErrNonFinite)
}
