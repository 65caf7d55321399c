package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/platformsim/server/internal/core/ecs"
	"github.com/platformsim/server/internal/net/packet"
	"go.uber.org/zap"
)

// Session represents a single client connection. The read loop runs in the
// http handler goroutine and dispatches each frame as it arrives; the write
// loop drains OutQueue in its own goroutine.
type Session struct {
	ID    uint64
	Token string // uuid, shown to the client and in logs
	conn  *websocket.Conn

	state  atomic.Int32 // packet.SessionState stored as int32
	object atomic.Int64 // character id, ecs.NoObject until seeded

	OutQueue chan []byte // writer goroutine reads from here

	IP string

	registry     *packet.Registry
	readTimeout  time.Duration
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func newSession(conn *websocket.Conn, id uint64, token string, outSize int, reg *packet.Registry, readTimeout, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		Token:        token,
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		registry:     reg,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id), zap.String("token", token)),
	}
	s.state.Store(int32(packet.StateConnected))
	s.object.Store(int64(ecs.NoObject))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Object returns the character this session controls.
func (s *Session) Object() ecs.ObjectID {
	return ecs.ObjectID(s.object.Load())
}

// Bind attaches the seeded character and moves the session in world.
func (s *Session) Bind(id ecs.ObjectID) {
	s.object.Store(int64(id))
	s.SetState(packet.StateInWorld)
}

// Log returns the session-scoped logger.
func (s *Session) Log() *zap.Logger { return s.log }

// Send queues a frame for the writer goroutine. Non-blocking: if OutQueue is
// full the session is disconnected.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("output queue full, dropping slow client")
		s.Close()
	}
}

// Close shuts down the session. Safe to call from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop reads frames until the socket fails or the session closes and
// dispatches each one through the registry.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		if s.readTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		if err := s.registry.Dispatch(s, s.State(), data); err != nil {
			s.log.Warn("message rejected", zap.Error(err))
		}
		if s.closed.Load() {
			return
		}
	}
}

// writeLoop drains OutQueue to the socket.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.writeOne(data) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOne(data []byte) bool {
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
