package packet

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/platformsim/server/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nums(vs ...string) []json.Number {
	out := make([]json.Number, len(vs))
	for i, v := range vs {
		out[i] = json.Number(v)
	}
	return out
}

func TestEventArgs(t *testing.T) {
	cases := []struct {
		name    string
		event   string
		args    []json.Number
		wantErr error
	}{
		{"input", "UserInputEvent", nums("3", "2"), nil},
		{"int accepted for float", "ReplayRecordingStopEvent", nums("2"), nil},
		{"whole float accepted for int", "ClientDisconnectEvent", nums("4.0"), nil},
		{"no args", "ReplayRecordingStartEvent", nil, nil},
		{"unknown event", "TeleportEvent", nums("1"), ErrUnknownEvent},
		{"too few", "UserInputEvent", nums("3"), ErrArgCount},
		{"too many", "ReplayFinishedEvent", nums("1"), ErrArgCount},
		{"fractional int", "UserInputEvent", nums("3", "2.5"), ErrArgType},
		{"not a number", "CharacterDeathEvent", nums("abc"), ErrArgType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typ, args, err := EventArgs(tc.event, tc.args)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			e := event.New(0, typ, args...)
			assert.NoError(t, e.Validate())
		})
	}
}

func TestEventArgsConvertsKinds(t *testing.T) {
	typ, args, err := EventArgs("CharacterSpawnEvent", nums("7", "2", "10", "-3.5"))
	require.NoError(t, err)
	s, err := event.DecodeSpawn(event.New(1, typ, args...))
	require.NoError(t, err)
	assert.EqualValues(t, 7, s.Object)
	assert.Equal(t, 10.0, s.X)
	assert.Equal(t, -3.5, s.Y)
}

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"event","name":"UserInputEvent","args":[3,2]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeEvent, msg.Type)
	assert.Equal(t, nums("3", "2"), msg.Args)

	_, err = Decode([]byte(`{"name":"x"}`))
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodePosition(t *testing.T) {
	var p Position
	require.NoError(t, json.Unmarshal(EncodePosition(4, 2, 1.5, -2), &p))
	assert.Equal(t, Position{Type: TypePosition, Object: 4, Store: 2, X: 1.5, Y: -2}, p)
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got []string
	reg.Register(TypeEvent, []SessionState{StateInWorld}, func(_ any, msg *Message) error {
		got = append(got, msg.Name)
		return nil
	})
	reg.Register("boom", []SessionState{StateInWorld}, func(_ any, _ *Message) error {
		panic("bad handler")
	})

	frame := []byte(`{"type":"event","name":"ReplayFinishedEvent"}`)
	require.NoError(t, reg.Dispatch(nil, StateInWorld, frame))
	assert.Equal(t, []string{"ReplayFinishedEvent"}, got)

	assert.Error(t, reg.Dispatch(nil, StateConnected, frame))
	assert.NoError(t, reg.Dispatch(nil, StateInWorld, []byte(`{"type":"unheard"}`)))
	assert.Error(t, reg.Dispatch(nil, StateInWorld, []byte(`{"type":"boom"}`)))
	assert.Len(t, got, 1)
}
