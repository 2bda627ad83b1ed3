// pkg/engine/mission.go
package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/logging"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
)

// Phase is the driver's view of a mission's progress.
type Phase int

const (
	PhaseReady Phase = iota
	PhaseFlying
	PhaseResolving
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseFlying:
		return "flying"
	case PhaseResolving:
		return "resolving"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PitchSource supplies the pilot's pitch command for the next frame.
type PitchSource interface {
	Pitch() float64
}

// PitchFunc adapts a function to PitchSource.
type PitchFunc func() float64

// Pitch implements PitchSource.
func (f PitchFunc) Pitch() float64 { return f() }

// FrameFunc observes the state after a frame. It runs with the driver
// locked and must not call back into the Mission.
type FrameFunc func(s *mission.State)

// Mission owns one mission.State and steps it frame by frame. It is the
// only writer of the state; every exported method is safe for concurrent use.
//
// Events are published on EventBus synchronously while the driver is
// locked, so handlers must not call Mission methods.
type Mission struct {
	State       *mission.State
	EventBus    *event.Bus
	Config      config.DriverConfig
	CurrentTick uint64
	LastUpdate  time.Time

	mu           sync.Mutex
	ctx          context.Context
	logger       *logging.Logger
	started      bool
	delayElapsed float64
	finished     bool
}

// NewMission wraps a freshly built state. A nil logger discards output.
func NewMission(state *mission.State, cfg config.DriverConfig, logger *logging.Logger) *Mission {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = config.DefaultConfig().Driver.MaxStep
	}
	if cfg.ResultDelay < 0 {
		cfg.ResultDelay = 0
	}

	m := &Mission{
		State:    state,
		EventBus: event.NewEventBus(),
		Config:   cfg,
		ctx:      logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID()),
		logger:   logger.With("level_id", state.Level.ID),
	}
	m.registerEventHandlers()
	return m
}

// Context returns the mission's logging context, carrying its correlation id.
func (m *Mission) Context() context.Context {
	return m.ctx
}

// Start announces the mission. Calling it again has no effect.
func (m *Mission) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true
	m.LastUpdate = time.Now()
	m.logger.Info(m.ctx, "mission started",
		"targets", len(m.State.Targets),
		"obstacles", len(m.State.Obstacles),
		"time_limit", m.State.TimeLimit,
		"parts", len(m.State.Parts),
	)
	m.EventBus.Publish(&event.BaseEvent{
		EventType: event.MissionStarted,
		Source:    m,
	})
}

// Launch fires the drone.
func (m *Mission) Launch(powerPercent, angleDeg float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := len(m.State.Events)
	if err := m.State.Launch(powerPercent, angleDeg); err != nil {
		return logging.WrapError(err, "launch")
	}
	m.publishEvents(m.State.Events[seen:])
	return nil
}

// SetAutopilot switches the autopilot and returns the mode in effect.
func (m *Mission) SetAutopilot(mode string) mission.AutopilotMode {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied := m.State.SetAutopilot(mode)
	m.logger.Debug(m.ctx, "autopilot changed", "requested", mode, "mode", string(applied))
	return applied
}

// SetThrottle sets the throttle and returns the clamped value.
func (m *Mission) SetThrottle(v float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.State.SetThrottle(v)
}

// Phase reports where the mission is in its lifecycle.
func (m *Mission) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.phase()
}

func (m *Mission) phase() Phase {
	switch {
	case m.finished:
		return PhaseFinished
	case m.State.Status.Terminal():
		return PhaseResolving
	case m.State.Drone.Launched:
		return PhaseFlying
	default:
		return PhaseReady
	}
}

// Finished reports whether the result has been announced.
func (m *Mission) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.finished
}

// View runs fn with the driver locked. fn must treat the state as read-only.
func (m *Mission) View(fn func(s *mission.State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(m.State)
}

// Advance steps the mission by dt seconds, clamped to the configured
// maximum frame, and reports whether the result is ready. Once the result
// has been announced further calls do nothing.
func (m *Mission) Advance(dt, pitch float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.advance(dt, pitch)
}

func (m *Mission) advance(dt, pitch float64) bool {
	if m.finished {
		return true
	}
	dt = clampDelta(dt, m.Config.MaxStep)

	m.State.Step(dt, pitch)
	m.CurrentTick++
	m.publishEvents(m.State.Events)

	if !m.State.Status.Terminal() {
		return false
	}

	// A detonation holds the result back so its animation can play out.
	if m.State.Exploded() && m.delayElapsed < m.Config.ResultDelay {
		m.delayElapsed += dt
		return false
	}
	m.finish()
	return true
}

// Update advances the mission by the wall time since the previous update.
func (m *Mission) Update(pitch float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LastUpdate.IsZero() {
		m.LastUpdate = time.Now()
	}
	return m.updateLocked(pitch)
}

// Run steps the mission on a ticker until the result is announced or ctx
// is cancelled. frame, if non-nil, sees the state after every step.
func (m *Mission) Run(ctx context.Context, pitch PitchSource, frame FrameFunc) error {
	m.Start()

	ticker := time.NewTicker(m.Config.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info(m.ctx, "mission abandoned", "phase", m.Phase().String())
			return ctx.Err()
		case <-ticker.C:
			var p float64
			if pitch != nil {
				p = pitch.Pitch()
			}

			m.mu.Lock()
			done := m.updateLocked(p)
			if frame != nil {
				frame(m.State)
			}
			m.mu.Unlock()

			if done {
				return nil
			}
		}
	}
}

func (m *Mission) updateLocked(pitch float64) bool {
	now := time.Now()
	dt := now.Sub(m.LastUpdate).Seconds()
	m.LastUpdate = now
	return m.advance(dt, pitch)
}

func (m *Mission) finish() {
	m.finished = true
	s := m.State

	success := s.Status == mission.StatusSuccess
	m.logger.Info(m.ctx, "mission finished",
		"status", s.Status.String(),
		"reason", string(s.EndReason),
		"stars", s.Stars,
		"score", math.Round(s.Score),
		"damage_percent", s.TargetDamagePercent,
		"elapsed", s.Time,
		"ticks", m.CurrentTick,
	)
	m.EventBus.Publish(event.NewResultEvent(m, success, s.Stars, s.Score, string(s.EndReason)))
}

// publishEvents fans mission events out to subscribers.
func (m *Mission) publishEvents(events []*event.MissionEvent) {
	for _, e := range events {
		m.EventBus.Publish(e)
	}
}

// registerEventHandlers logs the mission lifecycle.
func (m *Mission) registerEventHandlers() {
	m.EventBus.Subscribe(event.Launch, func(e event.Event) {
		me := e.(*event.MissionEvent)
		m.logger.Info(m.ctx, "drone launched", "speed", me.Speed)
	})
	m.EventBus.Subscribe(event.PartDetached, func(e event.Event) {
		me := e.(*event.MissionEvent)
		m.logger.Info(m.ctx, "part detached", "slot", me.SlotID, "part", me.PartName, "at", me.At)
	})
	m.EventBus.Subscribe(event.Explosion, func(e event.Event) {
		me := e.(*event.MissionEvent)
		m.logger.Info(m.ctx, "warhead detonated",
			"reason", me.Reason,
			"radius", me.Radius,
			"power_scale", me.PowerScale,
			"at", me.At,
		)
	})
	m.EventBus.Subscribe(event.TargetDestroyed, func(e event.Event) {
		me := e.(*event.MissionEvent)
		m.logger.Debug(m.ctx, "target destroyed", "target", me.TargetID, "type", me.TargetType)
	})
	m.EventBus.Subscribe(event.DroneDestroyed, func(e event.Event) {
		me := e.(*event.MissionEvent)
		m.logger.Info(m.ctx, "drone destroyed", "at", me.At)
	})
}

func clampDelta(dt, maxStep float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	return math.Min(dt, maxStep)
}
