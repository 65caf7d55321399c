package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClock() *ManualClock {
	return NewManualClock(time.Unix(1_700_000_000, 0))
}

func TestRealCountsTics(t *testing.T) {
	clock := newClock()
	ms := NewReal(0.001, clock)

	assert.InDelta(t, 0, ms.Now(), 1e-9)
	clock.Advance(250 * time.Millisecond)
	assert.InDelta(t, 250, ms.Now(), 1e-6)
	assert.False(t, ms.Paused())
}

func TestGameScalesBase(t *testing.T) {
	clock := newClock()
	game := NewGame(2, NewReal(0.001, clock))

	clock.Advance(100 * time.Millisecond)
	assert.InDelta(t, 200, game.Now(), 1e-6)
}

func TestGameRateChangeDoesNotJump(t *testing.T) {
	clock := newClock()
	game := NewGame(1, NewReal(0.001, clock))

	clock.Advance(100 * time.Millisecond)
	game.SetRate(0.5)
	assert.InDelta(t, 100, game.Now(), 1e-6)

	clock.Advance(100 * time.Millisecond)
	assert.InDelta(t, 150, game.Now(), 1e-6)
}

func TestGamePauseFreezesTime(t *testing.T) {
	clock := newClock()
	game := NewGame(1, NewReal(0.001, clock))

	clock.Advance(40 * time.Millisecond)
	game.Pause()
	require.True(t, game.Paused())
	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 40, game.Now(), 1e-6)

	game.Resume()
	assert.False(t, game.Paused())
	assert.InDelta(t, 1, game.Rate(), 1e-9)
	clock.Advance(10 * time.Millisecond)
	assert.InDelta(t, 50, game.Now(), 1e-6)
}

func TestGameWrapsGame(t *testing.T) {
	clock := newClock()
	inner := NewGame(1, NewReal(0.001, clock))
	outer := NewGame(3, inner)

	clock.Advance(10 * time.Millisecond)
	assert.InDelta(t, 30, outer.Now(), 1e-6)

	inner.Pause()
	assert.True(t, outer.Paused())
}

func TestGameRestart(t *testing.T) {
	clock := newClock()
	game := NewGame(2, NewReal(0.001, clock))

	clock.Advance(time.Second)
	game.Restart()
	assert.InDelta(t, 0, game.Now(), 1e-9)
	clock.Advance(5 * time.Millisecond)
	assert.InDelta(t, 10, game.Now(), 1e-6)
}
