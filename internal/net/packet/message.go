package packet

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/platformsim/server/internal/core/event"
)

// Message types carried in the "type" field of every frame.
const (
	TypeEvent    = "event"    // client -> server: raise a named event
	TypePosition = "position" // client -> server: position request; server -> client: broadcast
	TypeWelcome  = "welcome"  // server -> client: session and character ids
	TypeSync     = "sync"     // server -> client: reply to a position request
)

var (
	ErrUnknownEvent = errors.New("packet: unknown event")
	ErrArgCount     = errors.New("packet: wrong argument count")
	ErrArgType      = errors.New("packet: wrong argument type")
	ErrMalformed    = errors.New("packet: malformed message")
)

// Message is one inbound frame. Only the fields of its Type are set.
type Message struct {
	Type   string        `json:"type"`
	Name   string        `json:"name,omitempty"`
	Args   []json.Number `json:"args,omitempty"`
	Update string        `json:"update,omitempty"`
}

// Decode parses one inbound frame.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &msg, nil
}

// EventArgs checks name and args against the event schema and converts them.
// Integers are accepted for float slots; a float with a fractional part is
// rejected for an int slot.
func EventArgs(name string, args []json.Number) (event.Type, []event.Arg, error) {
	typ := event.Type(name)
	schema, ok := typ.Schema()
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	if len(args) != len(schema) {
		return "", nil, fmt.Errorf("%w: %s wants %d, got %d", ErrArgCount, typ, len(schema), len(args))
	}
	out := make([]event.Arg, len(args))
	for i, kind := range schema {
		f, err := args[i].Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", nil, fmt.Errorf("%w: %s arg %d %q is not a number", ErrArgType, typ, i, args[i])
		}
		switch kind {
		case event.KindInt:
			if n, err := args[i].Int64(); err == nil {
				out[i] = event.Int(n)
				continue
			}
			if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
				return "", nil, fmt.Errorf("%w: %s arg %d %q is not an int", ErrArgType, typ, i, args[i])
			}
			out[i] = event.Int(int64(f))
		case event.KindFloat:
			out[i] = event.Float(f)
		}
	}
	return typ, out, nil
}

// Welcome tells a new client which character it controls.
type Welcome struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Object  int64  `json:"object"`
	Store   int64  `json:"store"`
}

// Position is an absolute position broadcast.
type Position struct {
	Type   string  `json:"type"`
	Object int64   `json:"object"`
	Store  int64   `json:"store"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Sync answers a position request with a success or error update in text
// form.
type Sync struct {
	Type   string `json:"type"`
	Update string `json:"update"`
}

func EncodeWelcome(session string, object, store int64) []byte {
	return mustMarshal(Welcome{Type: TypeWelcome, Session: session, Object: object, Store: store})
}

func EncodePosition(object, store int64, x, y float64) []byte {
	return mustMarshal(Position{Type: TypePosition, Object: object, Store: store, X: x, Y: y})
}

func EncodeSync(update string) []byte {
	return mustMarshal(Sync{Type: TypeSync, Update: update})
}

// mustMarshal encodes fixed, NaN-free message structs, which cannot fail.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("packet: marshal %T: %v", v, err))
	}
	return b
}
