package mission

import (
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

const groundMaterial = "ground"

func (s *State) collideGround() {
	d := &s.Drone
	if d.Position.Y+d.Radius < s.GroundY {
		return
	}

	m := s.model
	speed := d.Velocity.Length()
	d.Position.Y = s.GroundY - d.Radius
	d.Velocity.Y = -math.Abs(d.Velocity.Y) * m.GroundBounce
	d.Velocity.X *= m.GroundFriction

	s.applyImpactDamage(m.GroundImpact * speed)
	e := s.emit(event.Impact)
	e.Material = groundMaterial
	e.Speed = speed

	// thresholds read the live stats after this impact's damage
	stats := s.LiveSummary.Stats
	if speed > m.GroundExplodeSpeed-m.GroundExplodePerRadius*stats.Raw.DamageRadius+m.GroundExplodePerStability*stats.StabilityScore {
		s.triggerExplosion(groundMaterial)
	}
}

// collideObstacles resolves obstacle hits in level order. The first hit
// that detonates the warhead ends the pass.
func (s *State) collideObstacles() {
	m := s.model
	d := &s.Drone
	for _, o := range s.Obstacles {
		if o.Destroyed || !physics.CircleRectOverlap(d.Circle(), o.Rect) {
			continue
		}

		speed := d.Velocity.Length()
		mult := m.MaterialResistance(o.Material)

		damage := m.ObstacleRamDamage * speed * (1 + s.LiveSummary.Stats.DamageScore/m.ObstacleRamPerScore) / mult
		o.Durability = math.Max(0, o.Durability-damage)
		if o.Durability <= 0 {
			o.Destroyed = true
			s.DamageDealt += m.ObstacleRamReward
		}

		s.applyImpactDamage(m.ObstacleImpact * speed * mult)

		if d.Position.Y < o.Rect.Center().Y {
			d.Velocity.Y = -math.Abs(d.Velocity.Y) * m.ObstacleBounce
		} else {
			d.Velocity.Y = math.Abs(d.Velocity.Y) * m.ObstacleBounce
		}
		d.Velocity.X *= -m.ObstacleRebound

		if speed > m.ObstacleExplodeSpeed-m.ObstacleExplodePerRadius*s.LiveSummary.Stats.Raw.DamageRadius {
			s.triggerExplosion("obstacle")
			return
		}

		e := s.emit(event.Impact)
		e.Material = o.Material
		e.Speed = speed
	}
}

// collideTargets resolves target hits in level order. A hit above the
// detonation speed ends the pass.
func (s *State) collideTargets() {
	m := s.model
	d := &s.Drone
	for _, t := range s.Targets {
		if t.Destroyed {
			continue
		}
		if !d.Circle().Overlaps(physics.Circle{Center: t.Center, Radius: t.Radius}) {
			continue
		}

		speed := d.Velocity.Length()
		s.damageTarget(t, m.TargetRamDamage*speed+m.TargetRamBase, m.TargetRamReward)
		s.applyImpactDamage(m.TargetImpact * speed)

		if speed > m.TargetExplodeSpeed {
			s.triggerExplosion("target")
			return
		}

		d.Velocity = d.Velocity.Scale(m.TargetSlowdown)
		e := s.emit(event.Impact)
		e.Material = "target"
		e.Speed = speed
		e.TargetID = t.ID
	}
}

func (s *State) collectBonuses() {
	d := &s.Drone
	for _, b := range s.BonusItems {
		if b.Collected {
			continue
		}
		if !d.Circle().Overlaps(physics.Circle{Center: b.Center, Radius: b.Radius}) {
			continue
		}

		b.Collected = true
		s.CollectedBonus++
		s.DamageDealt += s.model.BonusReward
		e := s.emit(event.BonusCollected)
		e.BonusID = b.ID
	}
}

// damageTarget wounds t and, if that destroys it, credits the kill.
func (s *State) damageTarget(t *Target, damage, reward float64) {
	t.Durability = math.Max(0, t.Durability-damage)
	if t.Durability > 0 || t.Destroyed {
		return
	}

	t.Destroyed = true
	s.DestroyedTargets++
	s.DestroyedByType[t.TargetType]++
	s.DamageDealt += reward
	e := s.emit(event.TargetDestroyed)
	e.TargetID = t.ID
	e.TargetType = t.TargetType
}
