package event

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMoved(t *testing.T) {
	e := NewMoved(12, CharacterMovedByPlatform, Moved{Object: 3, Store: 1, DX: 1, DY: -2, X: 50, Y: 98})
	m, err := DecodeMoved(e)
	require.NoError(t, err)
	assert.Equal(t, Moved{Object: 3, Store: 1, DX: 1, DY: -2, X: 50, Y: 98}, m)

	_, err = DecodeMoved(NewSubject(0, CharacterDeath, 3))
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	_, err := DecodeSubject(New(0, CharacterDeath, Int(1), Int(2)))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = DecodeInput(New(0, UserInput, Int(1), Float(3)))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = DecodeSpawn(New(0, CharacterSpawn, Int(1), Int(2), Float(3)))
	assert.ErrorIs(t, err, ErrSchema)

	speed, err := DecodeRecordingStop(NewRecordingStop(0, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, speed)
}

func TestEventIsImmutable(t *testing.T) {
	args := []Arg{Int(1)}
	e := New(1, CharacterDeath, args...)
	args[0] = Int(99)
	got := e.Args()
	got[0] = Int(42)
	v, _ := e.Arg(0).AsInt()
	assert.Equal(t, int64(1), v)

	moved := e.At(7)
	assert.Equal(t, 7.0, moved.Time())
	assert.Equal(t, 1.0, e.Time())
}

func TestValidateRejectsNonFiniteFloats(t *testing.T) {
	ok := NewMoved(0, CharacterMoved, Moved{Object: 1, Store: 2, DX: 1, X: 5})
	assert.NoError(t, ok.Validate())

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		e := NewMoved(0, CharacterMoved, Moved{Object: 1, Store: 2, X: v})
		assert.ErrorIs(t, e.Validate(), ErrSchema, "x=%v", v)
	}
	assert.ErrorIs(t, NewRecordingStop(0, math.Inf(1)).Validate(), ErrSchema)
}
