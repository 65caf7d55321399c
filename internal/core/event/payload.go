package event

import (
	"fmt"

	"github.com/platformsim/server/internal/core/ecs"
)

// Typed views over event arguments. Constructors always produce events that
// satisfy their schema; decoders validate before reading.

// Subject is the payload of single-object events (death, jump, fall, disconnect).
type Subject struct {
	Object ecs.ObjectID
}

func NewSubject(t float64, typ Type, id ecs.ObjectID) Event {
	return New(t, typ, ObjectArg(id))
}

func DecodeSubject(e Event) (Subject, error) {
	if err := expect(e, idOnly); err != nil {
		return Subject{}, err
	}
	return Subject{Object: objectAt(e, 0)}, nil
}

// Input is the payload of UserInputEvent.
type Input struct {
	Object ecs.ObjectID
	Key    int64
}

func NewInput(t float64, id ecs.ObjectID, key int64) Event {
	return New(t, UserInput, ObjectArg(id), Int(key))
}

func DecodeInput(e Event) (Input, error) {
	if err := e.Validate(); err != nil {
		return Input{}, err
	}
	if e.typ != UserInput {
		return Input{}, fmt.Errorf("%w: %s is not %s", ErrSchema, e.typ, UserInput)
	}
	key, _ := e.args[1].AsInt()
	return Input{Object: objectAt(e, 0), Key: key}, nil
}

// Collision is the payload of CharacterCollisionEvent.
type Collision struct {
	Object ecs.ObjectID
	Other  ecs.ObjectID
}

func NewCollision(t float64, id, other ecs.ObjectID) Event {
	return New(t, CharacterCollision, ObjectArg(id), ObjectArg(other))
}

func DecodeCollision(e Event) (Collision, error) {
	if err := e.Validate(); err != nil {
		return Collision{}, err
	}
	if e.typ != CharacterCollision {
		return Collision{}, fmt.Errorf("%w: %s is not %s", ErrSchema, e.typ, CharacterCollision)
	}
	return Collision{Object: objectAt(e, 0), Other: objectAt(e, 1)}, nil
}

// Spawn is the payload of CharacterSpawnEvent.
type Spawn struct {
	Object ecs.ObjectID
	Store  ecs.ObjectID
	X, Y   float64
}

func NewSpawn(t float64, s Spawn) Event {
	return New(t, CharacterSpawn, ObjectArg(s.Object), ObjectArg(s.Store), Float(s.X), Float(s.Y))
}

func DecodeSpawn(e Event) (Spawn, error) {
	if err := e.Validate(); err != nil {
		return Spawn{}, err
	}
	if e.typ != CharacterSpawn {
		return Spawn{}, fmt.Errorf("%w: %s is not %s", ErrSchema, e.typ, CharacterSpawn)
	}
	return Spawn{
		Object: objectAt(e, 0),
		Store:  objectAt(e, 1),
		X:      floatAt(e, 2),
		Y:      floatAt(e, 3),
	}, nil
}

// Moved is the payload shared by every movement event: the delta applied
// and the resulting absolute position.
type Moved struct {
	Object ecs.ObjectID
	Store  ecs.ObjectID
	DX, DY float64
	X, Y   float64
}

func NewMoved(t float64, typ Type, m Moved) Event {
	return New(t, typ,
		ObjectArg(m.Object), ObjectArg(m.Store),
		Float(m.DX), Float(m.DY), Float(m.X), Float(m.Y))
}

func DecodeMoved(e Event) (Moved, error) {
	if !e.typ.IsMovement() {
		return Moved{}, fmt.Errorf("%w: %s is not a movement event", ErrSchema, e.typ)
	}
	if err := e.Validate(); err != nil {
		return Moved{}, err
	}
	return Moved{
		Object: objectAt(e, 0),
		Store:  objectAt(e, 1),
		DX:     floatAt(e, 2),
		DY:     floatAt(e, 3),
		X:      floatAt(e, 4),
		Y:      floatAt(e, 5),
	}, nil
}

// NewRecordingStop builds a ReplayRecordingStopEvent carrying the initial
// replay speed.
func NewRecordingStop(t float64, speed float64) Event {
	return New(t, ReplayRecordingStop, Float(speed))
}

func DecodeRecordingStop(e Event) (float64, error) {
	if e.typ != ReplayRecordingStop {
		return 0, fmt.Errorf("%w: %s is not %s", ErrSchema, e.typ, ReplayRecordingStop)
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}
	return floatAt(e, 0), nil
}

func expect(e Event, kinds []ArgKind) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if len(e.args) != len(kinds) {
		return fmt.Errorf("%w: %s does not carry a single object id", ErrSchema, e.typ)
	}
	for i, k := range kinds {
		if e.args[i].kind != k {
			return fmt.Errorf("%w: %s does not carry a single object id", ErrSchema, e.typ)
		}
	}
	return nil
}

func objectAt(e Event, i int) ecs.ObjectID {
	v, _ := e.args[i].AsInt()
	return ecs.ObjectID(v)
}

func floatAt(e Event, i int) float64 {
	v, _ := e.args[i].AsFloat()
	return v
}
