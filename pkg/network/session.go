package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/engine"
	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/logging"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/validation"
)

var errServerClosing = errors.New("server closing")

const (
	sendBufferSize     = 64
	defaultReadTimeout = 60 * time.Second
	closeGracePeriod   = time.Second
)

// Session is one connected pilot. The read pump handles commands, the write
// pump owns every socket write, and a mission goroutine runs the driver.
type Session struct {
	ID string

	server  *Server
	conn    *websocket.Conn
	codec   Codec
	send    chan []byte
	breaker *gobreaker.CircuitBreaker
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *logging.Logger

	closeOnce sync.Once

	mu       sync.Mutex
	callsign string
	mission  *engine.Mission
	flying   bool // until fly has queued the result
	pitch    float64
	pending  []EventView
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := logging.GenerateCorrelationID()
	ctx, cancel := context.WithCancel(logging.WithCorrelationID(s.ctx, id))
	return &Session{
		ID:      id,
		server:  s,
		conn:    conn,
		codec:   s.codec,
		send:    make(chan []byte, sendBufferSize),
		breaker: newSnapshotBreaker(ctx, "snapshots-"+id, s.cfg.Server.Breaker, s.logger),
		ctx:     ctx,
		cancel:  cancel,
		logger:  s.logger,
	}
}

// Pitch implements engine.PitchSource with the last pitch command.
func (s *Session) Pitch() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitch
}

func (s *Session) currentMission() *engine.Mission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mission
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.conn.Close()
	})
}

func (s *Session) readTimeout() time.Duration {
	if d := s.server.cfg.Server.ReadTimeout.Std(); d > 0 {
		return d
	}
	return defaultReadTimeout
}

func (s *Session) writeTimeout() time.Duration {
	if d := s.server.cfg.Server.WriteTimeout.Std(); d > 0 {
		return d
	}
	return 10 * time.Second
}

// readPump decodes commands until the connection fails.
func (s *Session) readPump() {
	defer func() {
		s.server.unregister(s)
		s.close()
	}()

	timeout := s.readTimeout()
	if limit := s.server.cfg.Server.MaxMessageBytes; limit > 0 {
		s.conn.SetReadLimit(limit)
	}
	s.conn.SetReadDeadline(time.Now().Add(timeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(timeout))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn(s.ctx, "websocket read failed", "error", err.Error())
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(timeout))

		if err := s.server.validator.ValidateMessage(raw, s.ID); err != nil {
			s.sendError(err)
			continue
		}
		var cmd Command
		if err := s.codec.Unmarshal(raw, &cmd); err != nil {
			s.sendError(fmt.Errorf("malformed command: %w", err))
			continue
		}
		if err := s.handle(cmd); err != nil {
			s.logger.Debug(s.ctx, "command rejected", "command", string(cmd.Type), "error", err.Error())
			s.sendError(err)
		}
	}
}

// writePump sends queued frames and keeps the connection alive with pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.readTimeout() * 9 / 10)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(closeGracePeriod))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
			return
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
			if err := s.conn.WriteMessage(s.codec.FrameType(), frame); err != nil {
				s.logger.Debug(s.ctx, "websocket write failed", "error", err.Error())
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) handle(cmd Command) error {
	switch cmd.Type {
	case CmdPing:
		s.queue(Message{Type: MsgPong})
		return nil
	case CmdJoin:
		return s.join(cmd)
	}

	m := s.currentMission()
	if m == nil {
		return ErrNotJoined
	}

	switch cmd.Type {
	case CmdLaunch:
		if err := validation.ValidateLaunch(cmd.Power, cmd.Angle); err != nil {
			return err
		}
		return m.Launch(cmd.Power, cmd.Angle)
	case CmdPitch:
		if err := validation.ValidatePitch(cmd.Pitch); err != nil {
			return err
		}
		s.mu.Lock()
		s.pitch = cmd.Pitch
		s.mu.Unlock()
	case CmdThrottle:
		if err := validation.ValidateThrottle(cmd.Throttle); err != nil {
			return err
		}
		m.SetThrottle(cmd.Throttle)
	case CmdAutopilot:
		var live build.Summary
		m.View(func(st *mission.State) { live = st.LiveSummary })
		mode, err := validation.ValidateAutopilot(cmd.Mode, live)
		if err != nil {
			return err
		}
		m.SetAutopilot(string(mode))
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}

func (s *Session) flyingNow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flying
}

func (s *Session) land() {
	s.mu.Lock()
	s.flying = false
	s.mu.Unlock()
}

func (s *Session) join(cmd Command) error {
	if s.flyingNow() {
		return ErrAlreadyFlying
	}
	callsign, err := validation.ValidateCallsign(cmd.Callsign)
	if err != nil {
		return err
	}

	m, summary, err := s.server.newMission(cmd.LevelID, cmd.Build, s.logger.With("callsign", callsign))
	if err != nil {
		return err
	}
	m.EventBus.Subscribe(event.All, s.onEvent)

	s.mu.Lock()
	s.callsign = callsign
	s.mission = m
	s.flying = true
	s.pitch = 0
	s.pending = nil
	s.mu.Unlock()

	level := m.State.Level
	s.queue(Message{Type: MsgWelcome, Welcome: &Welcome{
		SessionID: s.ID,
		Callsign:  callsign,
		LevelID:   level.ID,
		LevelName: level.Name,
		Viewport:  m.State.Bounds,
		Weight:    summary.Totals.Weight,
		Cost:      summary.Totals.Cost,
		Parts:     summary.Totals.SelectedCount,
		Warnings:  summary.Validation.Warnings,
	}})

	if !s.server.goTracked(func() { s.fly(m) }) {
		s.land()
		return errServerClosing
	}
	return nil
}

// onEvent collects mission events. It runs with the driver locked.
func (s *Session) onEvent(e event.Event) {
	me, ok := e.(*event.MissionEvent)
	if !ok {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, newEventView(me))
	s.mu.Unlock()
}

// fly runs the mission driver and reports its result. The session accepts
// a new join only once the result is queued or the driver stopped.
func (s *Session) fly(m *engine.Mission) {
	defer s.land()
	every := uint64(max(1, s.server.cfg.Server.SnapshotEvery))
	err := m.Run(s.ctx, s, func(st *mission.State) {
		s.flushEvents()
		if m.CurrentTick%every == 0 {
			s.sendSnapshot(NewSnapshot(st, m.CurrentTick))
		}
	})
	if err != nil {
		return
	}

	var (
		snap   *Snapshot
		result *Result
	)
	m.View(func(st *mission.State) {
		snap = NewSnapshot(st, m.CurrentTick)
		result = NewResult(st)
	})
	s.flushEvents()

	// a join waiting on the lock sees the result already queued
	s.mu.Lock()
	s.queue(Message{Type: MsgSnapshot, Snapshot: snap})
	s.queue(Message{Type: MsgResult, Result: result})
	s.flying = false
	s.mu.Unlock()

	s.logger.Info(s.ctx, "mission result sent",
		"success", result.Success,
		"stars", result.Stars,
		"score", result.Score,
	)
}

func (s *Session) flushEvents() {
	s.mu.Lock()
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(events) > 0 {
		s.queue(Message{Type: MsgEvents, Events: events})
	}
}

// sendSnapshot offers a snapshot through the breaker. Snapshots are lossy:
// a pilot who cannot keep up misses frames rather than stalling the mission.
func (s *Session) sendSnapshot(snap *Snapshot) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.enqueue(Message{Type: MsgSnapshot, Snapshot: snap})
	})
	return err
}

func (s *Session) sendError(err error) {
	s.queue(Message{Type: MsgError, Error: err.Error()})
}

// queue delivers a control message, logging it if it has to be dropped.
func (s *Session) queue(msg Message) {
	if err := s.enqueue(msg); err != nil {
		s.logger.Warn(s.ctx, "dropped message", "type", string(msg.Type), "error", err.Error())
	}
}

func (s *Session) enqueue(msg Message) error {
	frame, err := s.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msg.Type, err)
	}
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return errSendBufferFull
	}
}
