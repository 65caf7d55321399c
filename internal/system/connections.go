package system

import (
	"time"

	"github.com/platformsim/server/internal/core/event"
	coresys "github.com/platformsim/server/internal/core/system"
	"github.com/platformsim/server/internal/net"
	"github.com/platformsim/server/internal/net/packet"
	"github.com/platformsim/server/internal/world"
	"go.uber.org/zap"
)

// ConnectionSystem seeds characters for new sessions and removes the
// characters of closed ones. Phase 0 (Input).
type ConnectionSystem struct {
	server   *net.Server
	sessions *net.SessionStore
	guard    *event.Guard
	world    *world.World
	log      *zap.Logger
}

func NewConnectionSystem(server *net.Server, sessions *net.SessionStore, guard *event.Guard, w *world.World, log *zap.Logger) *ConnectionSystem {
	return &ConnectionSystem{
		server:   server,
		sessions: sessions,
		guard:    guard,
		world:    w,
		log:      log,
	}
}

func (s *ConnectionSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ConnectionSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.accept(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Drop closed sessions
	var closed []*net.Session
	s.sessions.ForEach(func(sess *net.Session) {
		if sess.IsClosed() {
			closed = append(closed, sess)
		}
	})
	for _, sess := range closed {
		s.drop(sess)
	}
}

// accept seeds a character, raises its spawn and sends the welcome message
// followed by every current position.
func (s *ConnectionSystem) accept(sess *net.Session) {
	if sess.IsClosed() {
		return
	}
	var (
		snap []world.Placement
		err  error
	)
	s.guard.Do(func(m *event.Manager) {
		id, x, y, cerr := s.world.Connect()
		if cerr != nil {
			err = cerr
			return
		}
		sess.Bind(id)
		m.Raise(event.NewSpawn(m.Now(), event.Spawn{
			Object: id,
			Store:  s.world.CharacterPositions.ID(),
			X:      x,
			Y:      y,
		}))
		snap = s.world.Snapshot()
	})
	if err != nil {
		sess.Log().Error("character seeding failed", zap.Error(err))
		sess.Close()
		return
	}
	s.sessions.Add(sess)
	sess.Send(packet.EncodeWelcome(sess.Token, int64(sess.Object()), int64(s.world.CharacterPositions.ID())))
	net.SendSnapshot(sess, snap)
	s.log.Info("character joined",
		zap.Uint64("session", sess.ID),
		zap.Int64("object", int64(sess.Object())),
		zap.Int("online", s.sessions.Len()),
	)
}

func (s *ConnectionSystem) drop(sess *net.Session) {
	s.sessions.Remove(sess.ID)
	s.guard.Do(func(_ *event.Manager) {
		s.world.Disconnect(sess.Object())
	})
	s.log.Info("character left",
		zap.Uint64("session", sess.ID),
		zap.Int64("object", int64(sess.Object())),
		zap.Int("online", s.sessions.Len()),
	)
}
