package event

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/platformsim/server/internal/core/ecs"
)

// ErrSchema is returned when an event's arguments do not match its type.
var ErrSchema = errors.New("event: arguments do not match schema")

// Arg is one event argument: an integer or a float.
type Arg struct {
	kind ArgKind
	i    int64
	f    float64
}

func Int(v int64) Arg               { return Arg{kind: KindInt, i: v} }
func Float(v float64) Arg           { return Arg{kind: KindFloat, f: v} }
func ObjectArg(id ecs.ObjectID) Arg { return Int(int64(id)) }

func (a Arg) Kind() ArgKind { return a.kind }

func (a Arg) AsInt() (int64, bool) {
	return a.i, a.kind == KindInt
}

func (a Arg) AsFloat() (float64, bool) {
	return a.f, a.kind == KindFloat
}

func (a Arg) String() string {
	switch a.kind {
	case KindInt:
		return fmt.Sprintf("%d", a.i)
	case KindFloat:
		return fmt.Sprintf("%g", a.f)
	}
	return "?"
}

// Event is an immutable timestamped message. Timestamps are in the units of
// the scheduler's active timeline.
type Event struct {
	time float64
	typ  Type
	args []Arg
}

// New builds an event. The argument slice is copied.
func New(t float64, typ Type, args ...Arg) Event {
	cp := make([]Arg, len(args))
	copy(cp, args)
	return Event{time: t, typ: typ, args: cp}
}

func (e Event) Time() float64 { return e.time }
func (e Event) Type() Type    { return e.typ }
func (e Event) Len() int      { return len(e.args) }

// Args returns a copy of the arguments.
func (e Event) Args() []Arg {
	cp := make([]Arg, len(e.args))
	copy(cp, e.args)
	return cp
}

// Arg returns argument i, or the zero Arg when out of range.
func (e Event) Arg(i int) Arg {
	if i < 0 || i >= len(e.args) {
		return Arg{}
	}
	return e.args[i]
}

// At returns a copy of e carrying timestamp t.
func (e Event) At(t float64) Event {
	return Event{time: t, typ: e.typ, args: e.args}
}

// Validate checks the arguments against the schema of the event's type.
func (e Event) Validate() error {
	schema, ok := e.typ.Schema()
	if !ok {
		return fmt.Errorf("%w: unknown type %q", ErrSchema, e.typ)
	}
	if len(schema) != len(e.args) {
		return fmt.Errorf("%w: %s wants %d args, got %d", ErrSchema, e.typ, len(schema), len(e.args))
	}
	for i, k := range schema {
		a := e.args[i]
		if a.kind != k {
			return fmt.Errorf("%w: %s arg %d is %s, want %s", ErrSchema, e.typ, i, a.kind, k)
		}
		if k == KindFloat && (math.IsNaN(a.f) || math.IsInf(a.f, 0)) {
			return fmt.Errorf("%w: %s arg %d is not finite", ErrSchema, e.typ, i)
		}
	}
	if math.IsNaN(e.time) {
		return fmt.Errorf("%w: %s has NaN timestamp", ErrSchema, e.typ)
	}
	return nil
}

func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s@%g(", e.typ, e.time)
	for i, a := range e.args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}
