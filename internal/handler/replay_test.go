package handler

import (
	"testing"
	"time"

	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replayed keeps only the events delivered while a replay is playing.
type replayed struct {
	m      *event.Manager
	events []event.Event
}

func (r *replayed) OnEvent(e event.Event) {
	if r.m.Replaying() {
		r.events = append(r.events, e)
	}
}

func moved(t float64, id ecs.ObjectID, x float64) event.Event {
	return event.NewMoved(t, event.CharacterMoved, event.Moved{Object: id, Store: 1, DX: 1, X: x})
}

func TestReplayRoundTrip(t *testing.T) {
	f := newFixture(t, restingLevel, testBindings)
	m := f.events
	finished := 0
	f.deps.OnReplayFinished = func() { finished++ }
	h := NewReplayHandler(f.deps)
	subscribe(m, h, true, event.ReplayRecordingStart, event.ReplayRecordingStop, event.ReplayFinished)
	out := &replayed{m: m}
	m.Register(event.CharacterMoved, out, true)

	f.clock.Advance(10 * time.Millisecond)
	m.Raise(event.New(m.Now(), event.ReplayRecordingStart))
	m.HandleEvents()
	require.True(t, h.Recording())

	m.Raise(moved(m.Now(), 7, 100)) // A at 10
	m.HandleEvents()
	f.clock.Advance(2 * time.Millisecond)
	m.Raise(moved(m.Now(), 7, 101)) // B at 12
	m.HandleEvents()
	assert.Equal(t, 2, h.Buffered())

	m.Raise(event.NewRecordingStop(m.Now(), 1.0))
	m.HandleEvents()

	assert.False(t, h.Recording())
	assert.True(t, m.Replaying())
	assert.True(t, m.IsRegistered(event.UserInput, h))
	assert.False(t, m.IsRegistered(event.CharacterMoved, h))
	require.Len(t, out.events, 1, "A is due at replay time 0")
	assert.InDelta(t, 0, out.events[0].Time(), 1e-9)

	f.clock.Advance(2 * time.Millisecond)
	m.HandleEvents()

	require.Len(t, out.events, 2)
	assert.InDelta(t, 2, out.events[1].Time(), 1e-9)
	a, err := event.DecodeMoved(out.events[0])
	require.NoError(t, err)
	b, err := event.DecodeMoved(out.events[1])
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 101.0, b.X)

	assert.False(t, m.Replaying(), "replay ends after the last recorded event")
	assert.False(t, m.IsRegistered(event.UserInput, h))
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, m.Pending())
}

func TestReplayOfEmptyRecordingEndsAtOnce(t *testing.T) {
	f := newFixture(t, restingLevel, testBindings)
	m := f.events
	h := NewReplayHandler(f.deps)
	subscribe(m, h, true, event.ReplayRecordingStart, event.ReplayRecordingStop, event.ReplayFinished)

	m.Raise(event.New(m.Now(), event.ReplayRecordingStart))
	m.Raise(event.NewRecordingStop(m.Now(), 2))
	m.HandleEvents()

	assert.False(t, m.Replaying())
	assert.False(t, h.Recording())
}

func TestStopWithoutRecordingIsIgnored(t *testing.T) {
	f := newFixture(t, restingLevel, testBindings)
	m := f.events
	h := NewReplayHandler(f.deps)
	subscribe(m, h, true, event.ReplayRecordingStart, event.ReplayRecordingStop, event.ReplayFinished)

	m.Raise(event.NewRecordingStop(m.Now(), 1))
	m.HandleEvents()
	assert.False(t, m.Replaying())
	assert.False(t, m.IsRegistered(event.UserInput, h))
}

func TestReplaySpeedKeys(t *testing.T) {
	f := newFixture(t, restingLevel, testBindings)
	m := f.events
	h := NewReplayHandler(f.deps)
	subscribe(m, h, true, event.ReplayRecordingStart, event.ReplayRecordingStop, event.ReplayFinished)

	m.Raise(event.New(m.Now(), event.ReplayRecordingStart))
	m.HandleEvents()
	f.clock.Advance(10 * time.Millisecond)
	m.Raise(moved(m.Now(), 7, 100))
	m.HandleEvents()
	f.clock.Advance(1000 * time.Millisecond)
	m.Raise(moved(m.Now(), 7, 101))
	m.HandleEvents()
	m.Raise(event.NewRecordingStop(m.Now(), 1))
	m.HandleEvents()
	require.True(t, m.Replaying())

	cases := []struct {
		key  component.Key
		want float64
	}{
		{component.KeyThree, 0.5},
		{component.KeyOne, 2},
		{component.KeyLeft, 2},
		{component.KeyTwo, 1},
	}
	for _, tc := range cases {
		m.Raise(event.NewInput(0, 7, int64(tc.key)))
		m.HandleEvents()
		assert.Equal(t, tc.want, m.ReplaySpeed(), "after key %s", tc.key)
	}
}

func TestReplaySuppressesPhysicsButKeepsBroadcast(t *testing.T) {
	f := newFixture(t, restingLevel, testBindings)
	m := f.events
	RegisterAll(f.deps)
	id := f.connect(t)

	m.Raise(event.NewInput(m.Now(), id, int64(component.KeyR)))
	m.HandleEvents()
	m.Raise(event.NewInput(m.Now(), id, int64(component.KeyRight)))
	m.HandleEvents()
	x, _ := f.at(t, id)
	require.Equal(t, 51.0, x)

	f.clock.Advance(10 * time.Millisecond)
	published := len(f.sink.updates)
	m.Raise(event.NewInput(m.Now(), id, int64(component.KeyTwo)))
	m.HandleEvents()

	// The replayed move and its gravity follow-up are broadcast again, but
	// nothing is simulated twice.
	assert.Greater(t, len(f.sink.updates), published)
	x, _ = f.at(t, id)
	assert.Equal(t, 51.0, x)
	assert.False(t, m.Replaying())
}
