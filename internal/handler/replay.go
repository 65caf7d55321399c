package handler

import (
	"slices"

	"github.com/platformsim/server/internal/component"
	"github.com/platformsim/server/internal/core/event"
	"go.uber.org/zap"
)

// ReplayHandler records movement and spawn events and plays them back on
// the replay timeline.
//
//	idle --start--> recording --stop--> replaying --finished--> idle
//
// Recorded events are stamped with the time they were observed. On stop
// they are re-raised relative to the recording start, followed by a
// ReplayFinished event at the last replayed timestamp.
type ReplayHandler struct {
	deps      *Deps
	recording bool
	startedAt float64
	buffer    []event.Event
	log       *zap.Logger
}

func NewReplayHandler(deps *Deps) *ReplayHandler {
	return &ReplayHandler{deps: deps, log: deps.Log.Named("replay")}
}

// Recording reports whether events are currently being captured.
func (h *ReplayHandler) Recording() bool { return h.recording }

// Buffered returns how many events have been captured so far.
func (h *ReplayHandler) Buffered() int { return len(h.buffer) }

func (h *ReplayHandler) OnEvent(e event.Event) {
	switch e.Type() {
	case event.ReplayRecordingStart:
		h.start()
	case event.ReplayRecordingStop:
		h.stop(e)
	case event.ReplayFinished:
		h.finish()
	case event.UserInput:
		h.changeSpeed(e)
	default:
		if h.recording && slices.Contains(event.Recordable, e.Type()) {
			h.buffer = append(h.buffer, e.At(h.deps.Events.Now()))
		}
	}
}

func (h *ReplayHandler) start() {
	if h.recording {
		return
	}
	m := h.deps.Events
	h.recording = true
	h.buffer = h.buffer[:0]
	for _, t := range event.Recordable {
		m.Register(t, h, true)
	}
	h.startedAt = m.Now()
	h.log.Info("recording started", zap.Float64("at", h.startedAt))
}

func (h *ReplayHandler) stop(e event.Event) {
	if !h.recording {
		return
	}
	speed, err := event.DecodeRecordingStop(e)
	if err != nil {
		h.log.Warn("bad recording stop event", zap.Error(err))
		return
	}
	m := h.deps.Events
	h.recording = false
	for _, t := range event.Recordable {
		m.Unregister(t, h)
	}

	m.StartReplay(speed)
	last := 0.0
	for _, ev := range h.buffer {
		last = ev.Time() - h.startedAt
		m.Raise(ev.At(last))
	}
	h.log.Info("replaying recording", zap.Int("events", len(h.buffer)), zap.Float64("length", last))
	h.buffer = nil
	m.Raise(event.New(last, event.ReplayFinished))

	if !m.IsRegistered(event.UserInput, h) {
		m.Register(event.UserInput, h, true)
	}
}

func (h *ReplayHandler) finish() {
	m := h.deps.Events
	if !m.Replaying() {
		return
	}
	m.StopReplay()
	m.Unregister(event.UserInput, h)
	if h.deps.OnReplayFinished != nil {
		h.deps.OnReplayFinished()
	}
}

func (h *ReplayHandler) changeSpeed(e event.Event) {
	m := h.deps.Events
	if !m.Replaying() {
		m.Unregister(event.UserInput, h)
		return
	}
	in, err := event.DecodeInput(e)
	if err != nil {
		h.log.Warn("bad input event", zap.Error(err))
		return
	}
	speeds := h.deps.Config.Replay
	switch component.Key(in.Key) {
	case component.KeyOne:
		m.SetReplaySpeed(speeds.FastSpeed)
	case component.KeyTwo:
		m.SetReplaySpeed(speeds.NormalSpeed)
	case component.KeyThree:
		m.SetReplaySpeed(speeds.SlowSpeed)
	}
}
