package net

import (
	"errors"
	"fmt"

	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/event"
	"github.com/platformsim/server/internal/net/packet"
	"github.com/platformsim/server/internal/world"
	"go.uber.org/zap"
)

// ErrNotOwner is returned when a client names a character it does not
// control.
var ErrNotOwner = errors.New("net: character not owned by session")

// Requests handles client frames. Handlers run on the client's read
// goroutine and touch the simulation only through the guard.
type Requests struct {
	guard *event.Guard
	world *world.World
	log   *zap.Logger
}

// RegisterRequests wires the client message handlers into reg.
func RegisterRequests(reg *packet.Registry, guard *event.Guard, w *world.World, log *zap.Logger) *Requests {
	rq := &Requests{guard: guard, world: w, log: log}
	inWorld := []packet.SessionState{packet.StateInWorld}
	reg.Register(packet.TypeEvent, inWorld, rq.handleEvent)
	reg.Register(packet.TypePosition, inWorld, rq.handlePosition)
	return rq
}

// handleEvent raises a client event. Clients may only raise disconnect and
// input events for their own character. While a replay is playing only the
// replay speed keys are accepted, and they are raised at time 0 so they are
// due at once.
func (rq *Requests) handleEvent(sessAny any, msg *packet.Message) error {
	sess := sessAny.(*Session)
	typ, args, err := packet.EventArgs(msg.Name, msg.Args)
	if err != nil {
		return err
	}
	if typ != event.ClientDisconnect && typ != event.UserInput {
		return fmt.Errorf("%w: %s is not a client event", packet.ErrUnknownEvent, typ)
	}
	if id, _ := args[0].AsInt(); id != int64(sess.Object()) {
		return fmt.Errorf("%w: %d", ErrNotOwner, id)
	}

	if typ == event.ClientDisconnect {
		sess.log.Info("client requested disconnect")
		sess.Close()
		return nil
	}

	key, _ := args[1].AsInt()
	rq.guard.Do(func(m *event.Manager) {
		t := m.Now()
		if m.Replaying() {
			if !component.Key(key).IsReplaySpeed() {
				rq.log.Debug("input ignored during replay",
					zap.Uint64("session", sess.ID), zap.Int64("key", key))
				return
			}
			t = 0
		}
		m.Raise(event.New(t, typ, args...))
	})
	return nil
}

// handlePosition applies a client position request through the character's
// sync store and raises the resulting move. The reply carries the position
// after the request, or an error update.
func (rq *Requests) handlePosition(sessAny any, msg *packet.Message) error {
	sess := sessAny.(*Session)
	var u component.PositionUpdate
	if err := u.UnmarshalText([]byte(msg.Update)); err != nil {
		rq.replyError(sess)
		return err
	}
	if u.Object != sess.Object() {
		rq.replyError(sess)
		return fmt.Errorf("%w: %d", ErrNotOwner, u.Object)
	}

	var (
		reply component.PositionUpdate
		err   error
	)
	rq.guard.Do(func(m *event.Manager) {
		if m.Replaying() {
			err = errors.New("net: position request during replay")
			return
		}
		var dx, dy float64
		dx, dy, err = rq.world.Sync.Apply(u)
		if err != nil {
			return
		}
		snap, _ := rq.world.Sync.Snapshot(u.Object)
		m.Raise(event.NewMoved(m.Now(), event.CharacterMoved, event.Moved{
			Object: u.Object,
			Store:  rq.world.Sync.PositionStore(u.Object),
			DX:     dx,
			DY:     dy,
			X:      snap.X,
			Y:      snap.Y,
		}))
		reply = snap
	})
	if err != nil {
		rq.replyError(sess)
		return err
	}
	reply.Code = component.UpdateSuccess
	text, _ := reply.MarshalText()
	sess.Send(packet.EncodeSync(string(text)))
	return nil
}

func (rq *Requests) replyError(sess *Session) {
	text, _ := component.PositionUpdate{Code: component.UpdateError, Object: sess.Object()}.MarshalText()
	sess.Send(packet.EncodeSync(string(text)))
}
