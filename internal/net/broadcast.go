package net

import (
	"github.com/platformsim/server/internal/handler"
	"github.com/platformsim/server/internal/net/packet"
	"github.com/platformsim/server/internal/world"
)

// Broadcaster fans position updates out to every in-world session.
// Called only from the game loop goroutine.
type Broadcaster struct {
	sessions *SessionStore
}

func NewBroadcaster(sessions *SessionStore) *Broadcaster {
	return &Broadcaster{sessions: sessions}
}

func (b *Broadcaster) PublishPosition(u handler.PositionUpdate) {
	b.broadcast(packet.EncodePosition(int64(u.Object), int64(u.Store), u.X, u.Y))
}

// PublishSnapshot sends every placement to every in-world session.
func (b *Broadcaster) PublishSnapshot(snap []world.Placement) {
	for _, p := range snap {
		b.broadcast(packet.EncodePosition(int64(p.Object), int64(p.Store), p.X, p.Y))
	}
}

// SendSnapshot sends every placement to one session.
func SendSnapshot(s *Session, snap []world.Placement) {
	for _, p := range snap {
		s.Send(packet.EncodePosition(int64(p.Object), int64(p.Store), p.X, p.Y))
	}
}

func (b *Broadcaster) broadcast(frame []byte) {
	b.sessions.ForEach(func(s *Session) {
		if s.State() == packet.StateInWorld {
			s.Send(frame)
		}
	})
}
