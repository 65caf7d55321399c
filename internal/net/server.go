package net

import (
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/platformsim/server/internal/config"
	"github.com/platformsim/server/internal/net/packet"
	"go.uber.org/zap"
)

// Server upgrades http requests to websocket sessions.
// New sessions are communicated to the game loop via a channel.
type Server struct {
	upgrader websocket.Upgrader
	registry *packet.Registry
	cfg      config.NetworkConfig
	nextID   atomic.Uint64
	newConns chan *Session
	log      *zap.Logger
}

func NewServer(cfg config.NetworkConfig, reg *packet.Registry, log *zap.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		registry: reg,
		cfg:      cfg,
		newConns: make(chan *Session, cfg.InQueueSize),
		log:      log,
	}
}

// ServeHTTP upgrades the request, hands the session to the game loop and
// runs its read loop until the client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := newSession(conn, id, uuid.NewString(), s.cfg.OutQueueSize, s.registry,
		s.cfg.ReadTimeout, s.cfg.WriteTimeout, s.log)

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("connection queue full, rejecting client", zap.String("ip", sess.IP))
		sess.Close()
		return
	}
	sess.log.Info("client connected", zap.String("ip", sess.IP))

	go sess.writeLoop()
	sess.readLoop()
	sess.log.Info("client disconnected")
}

// Handler returns an http mux serving the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, s)
	return mux
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}
