package mission

import (
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/part"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// applyImpactDamage wounds the drone and one random attached part. Impacts
// at or below the absorption floor do nothing.
func (s *State) applyImpactDamage(impact float64) {
	effective := math.Max(0, impact-s.model.ImpactAbsorb)
	if effective <= 0 {
		return
	}

	m := s.model
	stability := s.LiveSummary.Stats.StabilityScore
	absorb := math.Min(m.HealthAbsorbMax, stability/m.HealthAbsorbStability)
	s.Drone.Health = math.Max(0, s.Drone.Health-effective*(m.HealthDamageBase-absorb))

	if p := s.pickDamagedPart(); p != nil {
		p.Durability = math.Max(0, p.Durability-effective*m.PartWear)
		if p.Durability <= 0 && !p.Detached {
			p.Detached = true
			s.DetachedParts = append(s.DetachedParts, p.Name)
			e := s.emit(event.PartDetached)
			e.PartName = p.Name
			e.SlotID = p.SlotID
			s.LiveSummary = s.summarizer.Recompute(s.Parts, s.BaseSummary)
		}
	}

	if s.Drone.Health <= 0 && !s.Drone.Destroyed {
		s.Drone.Destroyed = true
		s.emit(event.DroneDestroyed)
	}
}

// pickDamagedPart chooses uniformly among attached parts, sparing the core
// while anything else remains. It returns nil when nothing is attached.
func (s *State) pickDamagedPart() *build.PartState {
	active := s.Parts.Active()
	if len(active) == 0 {
		return nil
	}

	pool := make([]*build.PartState, 0, len(active))
	for _, p := range active {
		if p.Category != part.CategoryCore {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		pool = active
	}
	return pool[s.rng.IntN(len(pool))]
}

// triggerExplosion detonates the warhead at the drone's position. A second
// trigger while an explosion is live does nothing.
func (s *State) triggerExplosion(reason string) {
	if s.Explosion != nil {
		return
	}

	m := s.model
	damageRadius := s.LiveSummary.Stats.Raw.DamageRadius
	warheads := float64(s.Parts.ActiveCount(part.CategoryWarhead))
	powerScale := 1 + math.Min(m.WarheadPowerMax, m.WarheadPowerStep*warheads) +
		math.Min(m.RadiusPowerMax, m.RadiusPowerStep*damageRadius)
	radius := physics.Clamp((m.BlastRadiusBase+m.BlastRadiusPerUnit*damageRadius)*(0.75+0.25*powerScale),
		m.ExplosionMinRadius, m.ExplosionMaxRadius)

	s.Explosion = &Explosion{
		Position:   s.Drone.Position,
		Radius:     radius,
		PowerScale: powerScale,
		TTL:        m.ExplosionTTL,
		Reason:     reason,
	}
	s.Drone.Destroyed = true
	s.LastExplosionAt = s.Time

	e := s.emit(event.Explosion)
	e.Reason = reason
	e.Radius = radius
	e.PowerScale = powerScale

	s.applyBlast(s.Drone.Position, radius, powerScale)
}

// applyBlast damages everything within reach of the blast, falling off
// linearly with distance.
func (s *State) applyBlast(at physics.Vector2D, radius, powerScale float64) {
	m := s.model
	for _, o := range s.Obstacles {
		if o.Destroyed {
			continue
		}
		dist := at.Distance(o.Rect.Center())
		reach := radius + o.Rect.HalfExtent()
		if dist > reach {
			continue
		}
		o.Durability = math.Max(0, o.Durability-(1-dist/reach)*m.ObstacleBlastDamage*powerScale)
		if o.Durability <= 0 {
			o.Destroyed = true
			s.DamageDealt += m.ObstacleBlastReward
		}
	}

	for _, t := range s.Targets {
		if t.Destroyed {
			continue
		}
		dist := at.Distance(t.Center)
		reach := radius + t.Radius
		if dist > reach {
			continue
		}
		s.damageTarget(t, (1-dist/reach)*m.TargetBlastDamage*powerScale, m.TargetBlastReward)
	}
}
