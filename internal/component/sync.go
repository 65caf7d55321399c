package component

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/platformsim/server/internal/core/ecs"
	"go.uber.org/zap"
)

// UpdateCode classifies a position update message.
type UpdateCode int

const (
	UpdateAbsolute UpdateCode = 1
	UpdateRelative UpdateCode = 2
	UpdateError    UpdateCode = 3
	UpdateSuccess  UpdateCode = 4
)

var (
	ErrUnknownCode = errors.New("component: unknown position update code")
	ErrNotMember   = errors.New("component: object not in store")
	ErrNonFinite   = errors.New("component: position is not finite")
)

// PositionUpdate is an absolute or relative position message exchanged with
// clients. Its text form is "<code> <id> <x> <y>".
type PositionUpdate struct {
	Code   UpdateCode
	Object ecs.ObjectID
	X, Y   float64
}

func (u PositionUpdate) MarshalText() ([]byte, error) {
	s := fmt.Sprintf("%d %d %s %s", u.Code, u.Object,
		strconv.FormatFloat(u.X, 'g', -1, 64),
		strconv.FormatFloat(u.Y, 'g', -1, 64))
	return []byte(s), nil
}

func (u *PositionUpdate) UnmarshalText(text []byte) error {
	fields := strings.Fields(string(text))
	if len(fields) != 4 {
		return fmt.Errorf("component: position update %q: want 4 fields, got %d", text, len(fields))
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("component: position update code: %w", err)
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("component: position update id: %w", err)
	}
	x, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return fmt.Errorf("component: position update x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return fmt.Errorf("component: position update y: %w", err)
	}
	if !finite(x) || !finite(y) {
		return fmt.Errorf("%w: position update %q", ErrNonFinite, text)
	}
	*u = PositionUpdate{Code: UpdateCode(code), Object: ecs.ObjectID(id), X: x, Y: y}
	return nil
}

// Sync builds and applies client position updates for its members.
type Sync struct {
	*ecs.Table[syncRow]
	reg *ecs.Registry
}

type syncRow struct {
	pos *Position
}

func NewSync(id ecs.ObjectID, name string, reg *ecs.Registry, log *zap.Logger) *Sync {
	return &Sync{Table: ecs.NewTable[syncRow](id, name, log), reg: reg}
}

func (s *Sync) Add(id, positionStore ecs.ObjectID) bool {
	pos, err := ecs.Resolve[*Position](s.reg, positionStore)
	if err != nil {
		s.Log().Warn("sync add rejected", zap.Int64("object", int64(id)), zap.Error(err))
		return false
	}
	return s.Insert(id, &syncRow{pos: pos})
}

// PositionStore returns the id of the Position store backing id.
func (s *Sync) PositionStore(id ecs.ObjectID) ecs.ObjectID {
	r, ok := s.Row(id, "position store")
	if !ok {
		return ecs.NoObject
	}
	return r.pos.ID()
}

// Snapshot builds an absolute update carrying id's current position.
func (s *Sync) Snapshot(id ecs.ObjectID) (PositionUpdate, bool) {
	r, ok := s.Row(id, "snapshot")
	if !ok {
		return PositionUpdate{Code: UpdateError, Object: id}, false
	}
	x, y, ok := r.pos.At(id)
	if !ok {
		return PositionUpdate{Code: UpdateError, Object: id}, false
	}
	return PositionUpdate{Code: UpdateAbsolute, Object: id, X: x, Y: y}, true
}

// Apply sets (absolute) or offsets (relative) the object's position and
// returns the delta applied.
func (s *Sync) Apply(u PositionUpdate) (dx, dy float64, err error) {
	if u.Code != UpdateAbsolute && u.Code != UpdateRelative {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownCode, u.Code)
	}
	r, ok := s.Get(u.Object)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s has no object %d", ErrNotMember, s.Name(), u.Object)
	}
	x, y, ok := r.pos.At(u.Object)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s has no object %d", ErrNotMember, r.pos.Name(), u.Object)
	}
	if u.Code == UpdateAbsolute {
		dx, dy = u.X-x, u.Y-y
	} else {
		dx, dy = u.X, u.Y
	}
	if !finite(dx) || !finite(dy) || !finite(x+dx) || !finite(y+dy) {
		return 0, 0, fmt.Errorf("%w: object %d moved by (%g, %g) from (%g, %g)", ErrNonFinite, u.Object, dx, dy, x, y)
	}
	r.pos.Move(u.Object, dx, dy)
	return dx, dy, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
