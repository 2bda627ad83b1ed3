package mission

import (
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// Bounds margins outside the viewport before a drone counts as lost.
const (
	boundsMarginX   = 120
	boundsMarginTop = 220
	boundsMarginBot = 220
)

// Step advances the mission by dt seconds with the pilot's pitch command in
// [-1,1]. The events of the previous step are discarded. Once the mission
// is over only the explosion countdown, progress, rating and score advance.
func (s *State) Step(dt, pitch float64) {
	s.Events = nil
	dt = finiteOr(math.Max(0, dt), 0)
	pitch = finiteOr(pitch, 0)

	if s.Status.Terminal() {
		s.advanceExplosion(dt)
		s.refreshObjectives()
		s.refreshRating()
		s.finalize()
		s.updateScore()
		return
	}

	s.Time += dt
	outOfBounds := false

	if s.Drone.Launched && !s.Drone.Destroyed {
		s.fly(dt, pitch)
		s.collideGround()
		s.collideObstacles()
		s.collideTargets()
		s.collectBonuses()
		outOfBounds = s.isOutOfBounds()
	}

	switch {
	case outOfBounds:
		s.end(ReasonBounds)
	case s.Drone.Destroyed && s.Explosion == nil:
		s.end(ReasonDestroyed)
	case s.Time >= s.TimeLimit:
		s.end(ReasonTimeout)
	}

	s.advanceExplosion(dt)
	s.refreshObjectives()
	s.refreshRating()

	switch {
	case s.TargetDamagePercent >= 100:
		s.end(ReasonCleared)
	case s.Drone.Destroyed && s.Explosion == nil:
		s.end(ReasonDestroyed)
	}

	s.finalize()
	if s.Status == StatusSuccess {
		s.Explosion = nil
	}
	s.updateScore()
}

// end stops the mission. The first reason wins; the outcome is graded by
// finalize in the same step.
func (s *State) end(reason EndReason) {
	if s.EndReason != ReasonNone {
		return
	}
	s.EndReason = reason
}

// finalize grades an ended mission exactly once: at least one star is a
// success, anything less is a failure.
func (s *State) finalize() {
	if s.Resolved || s.EndReason == ReasonNone {
		return
	}
	s.Resolved = true

	if s.Stars >= 1 {
		s.Status = StatusSuccess
		e := s.emit(event.MissionSuccess)
		e.Reason = string(s.EndReason)
		return
	}
	s.Status = StatusFail
	e := s.emit(event.MissionFail)
	e.Reason = string(s.EndReason)
}

func (s *State) isOutOfBounds() bool {
	p := s.Drone.Position
	return p.X < -boundsMarginX ||
		p.X > s.Bounds.Width+boundsMarginX ||
		p.Y < -boundsMarginTop ||
		p.Y > s.Bounds.Height+boundsMarginBot
}

// fly integrates the drone's rotation, forces and position for one step.
func (s *State) fly(dt, pitch float64) {
	m := s.model
	stats := s.LiveSummary.Stats

	forces := physics.FlightForces{
		Command:         s.controlCommand(pitch),
		AngularGain:     m.AngularGain,
		Damping:         physics.Clamp(m.DampingBase+stats.StabilityScore/m.DampingStability, m.DampingMin, m.DampingMax),
		Wind:            s.Wind,
		DragCoefficient: m.DragBase + m.DragPerPoint*math.Max(0, stats.Raw.Drag),
		LiftStrength:    m.LiftPerScore * math.Max(0, stats.LiftScore),
		Thrust:          math.Max(0, stats.EnergyBalance) * m.ThrustBase * m.PowerMultiplier(s.Parts.ActiveThrust()) * s.Drone.Throttle,
		Gravity:         m.Gravity,
	}
	physics.IntegrateFlight(&s.Drone.FlightBody, forces, dt)
}

// controlCommand blends the pilot's pitch with the autopilot and scales it
// by the airframe's control authority.
func (s *State) controlCommand(pitch float64) float64 {
	m := s.model
	stats := s.LiveSummary.Stats
	d := &s.Drone
	auto := 0.0

	if s.Autopilot == AutopilotStabilize || s.Autopilot == AutopilotTerminal {
		diff := physics.NormalizeAngle(d.Velocity.Heading() - d.Angle)
		auto += diff*m.StabilizeGain - d.AngularVelocity*m.StabilizeDamping
	}

	if s.Autopilot == AutopilotTerminal {
		if t, dist := s.nearestTarget(); t != nil && dist < m.TerminalRange {
			desired := t.Center.Sub(d.Position).Heading()
			diff := physics.NormalizeAngle(desired - d.Angle)
			assist := physics.Clamp(stats.Raw.Guidance/18+stats.LockEase/60, m.AssistMin, m.AssistMax)
			auto += diff * assist
		}
	}

	authority := physics.Clamp(m.AuthorityBase+stats.ControlScore/100, m.AuthorityMin, m.AuthorityMax)
	return physics.Clamp(pitch+auto, -m.CommandLimit, m.CommandLimit) * authority
}

// nearestTarget returns the closest undestroyed target; ties keep the first
// in level order.
func (s *State) nearestTarget() (*Target, float64) {
	var best *Target
	bestDist := math.Inf(1)
	for _, t := range s.Targets {
		if t.Destroyed {
			continue
		}
		if d := t.Center.Distance(s.Drone.Position); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist
}

func (s *State) advanceExplosion(dt float64) {
	if s.Explosion == nil {
		return
	}
	s.Explosion.TTL -= dt
	if s.Explosion.TTL <= 0 {
		s.Explosion = nil
	}
}
