package handler

import (
	"github.com/platformsim/server/internal/core/event"
)

// PositionalHandler publishes the absolute position carried by movement and
// spawn events. It keeps publishing during a replay.
type PositionalHandler struct {
	sink PositionSink
}

func NewPositionalHandler(sink PositionSink) *PositionalHandler {
	return &PositionalHandler{sink: sink}
}

func (h *PositionalHandler) OnEvent(e event.Event) {
	if h.sink == nil {
		return
	}
	if e.Type() == event.CharacterSpawn {
		s, err := event.DecodeSpawn(e)
		if err != nil {
			return
		}
		h.sink.PublishPosition(PositionUpdate{Object: s.Object, Store: s.Store, X: s.X, Y: s.Y})
		return
	}
	m, err := event.DecodeMoved(e)
	if err != nil {
		return
	}
	h.sink.PublishPosition(PositionUpdate{Object: m.Object, Store: m.Store, X: m.X, Y: m.Y})
}
