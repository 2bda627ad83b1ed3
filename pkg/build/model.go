package build

import (
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/part"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// StatModel holds the empirically tuned coefficients that turn summed part
// stats and tuning into flight scores. They are gameplay constants, kept in
// one place so they can be tuned from configuration.
type StatModel struct {
	LiftBase          float64 `json:"liftBase" yaml:"liftBase"`
	LiftWingLength    float64 `json:"liftWingLength" yaml:"liftWingLength"`
	LiftPerWing       float64 `json:"liftPerWing" yaml:"liftPerWing"`
	LiftSlopePerWing  float64 `json:"liftSlopePerWing" yaml:"liftSlopePerWing"`
	DragBase          float64 `json:"dragBase" yaml:"dragBase"`
	DragWingLength    float64 `json:"dragWingLength" yaml:"dragWingLength"`
	DragSlopeAbs      float64 `json:"dragSlopeAbs" yaml:"dragSlopeAbs"`
	DragSlopePositive float64 `json:"dragSlopePositive" yaml:"dragSlopePositive"`
	FinLength         float64 `json:"finLength" yaml:"finLength"`
	FinHeight         float64 `json:"finHeight" yaml:"finHeight"`

	StabilityPerCore float64 `json:"stabilityPerCore" yaml:"stabilityPerCore"`
	StabilityWinged  float64 `json:"stabilityWinged" yaml:"stabilityWinged"`
	StabilityPerWing float64 `json:"stabilityPerWing" yaml:"stabilityPerWing"`
	StabilityNoWings float64 `json:"stabilityNoWings" yaml:"stabilityNoWings"`
	StabilityFin     float64 `json:"stabilityFin" yaml:"stabilityFin"`
	StabilityWeight  float64 `json:"stabilityWeight" yaml:"stabilityWeight"`

	ControlGuidance float64 `json:"controlGuidance" yaml:"controlGuidance"`
	ControlPerWing  float64 `json:"controlPerWing" yaml:"controlPerWing"`
	ControlFin      float64 `json:"controlFin" yaml:"controlFin"`
	ControlLatency  float64 `json:"controlLatency" yaml:"controlLatency"`

	ManeuverControl   float64 `json:"maneuverControl" yaml:"maneuverControl"`
	ManeuverFin       float64 `json:"maneuverFin" yaml:"maneuverFin"`
	ManeuverStability float64 `json:"maneuverStability" yaml:"maneuverStability"`

	LiftScoreDrag    float64 `json:"liftScoreDrag" yaml:"liftScoreDrag"`
	LockEaseGuidance float64 `json:"lockEaseGuidance" yaml:"lockEaseGuidance"`
	DamageRadius     float64 `json:"damageRadius" yaml:"damageRadius"`
	DamageDurability float64 `json:"damageDurability" yaml:"damageDurability"`
}

// DefaultStatModel returns the shipped coefficients.
func DefaultStatModel() StatModel {
	return StatModel{
		LiftBase:          0.62,
		LiftWingLength:    0.58,
		LiftPerWing:       1.8,
		LiftSlopePerWing:  3.2,
		DragBase:          0.74,
		DragWingLength:    0.46,
		DragSlopeAbs:      2.6,
		DragSlopePositive: 1.1,
		FinLength:         0.55,
		FinHeight:         0.75,

		StabilityPerCore: 2.2,
		StabilityWinged:  3.5,
		StabilityPerWing: 2.1,
		StabilityNoWings: -10,
		StabilityFin:     2.2,
		StabilityWeight:  0.12,

		ControlGuidance: 0.55,
		ControlPerWing:  1.5,
		ControlFin:      2.8,
		ControlLatency:  0.8,

		ManeuverControl:   0.55,
		ManeuverFin:       7,
		ManeuverStability: 0.2,

		LiftScoreDrag:    0.35,
		LockEaseGuidance: 0.4,
		DamageRadius:     8,
		DamageDurability: 0.05,
	}
}

// Scores are the derived flight scores of a build.
type Scores struct {
	StabilityScore  float64 `json:"stabilityScore"`
	ControlScore    float64 `json:"controlScore"`
	ManeuverScore   float64 `json:"maneuverScore"`
	LiftScore       float64 `json:"liftScore"`
	LiftToDragRatio float64 `json:"liftToDragRatio"`
	LockEase        float64 `json:"lockEase"`
	DamageScore     float64 `json:"damageScore"`
	EnergyBalance   float64 `json:"energyBalance"`
	EffectiveLift   float64 `json:"effectiveLift"`
	EffectiveDrag   float64 `json:"effectiveDrag"`
}

// Derive computes flight scores from raw stats, totals and tuning.
func (m StatModel) Derive(raw part.Stats, totals Totals, tuning Tuning) Scores {
	wingLength := tuning.WingLength / 100
	wingSlope := tuning.WingSlope / 20
	finLength := tuning.FinLength / 100
	finHeight := tuning.FinHeight / 100
	wings := float64(totals.WingCount)
	tails := float64(totals.TailCount)

	effectiveLift := raw.Lift*(m.LiftBase+wingLength*m.LiftWingLength) +
		wings*m.LiftPerWing +
		wingSlope*m.LiftSlopePerWing*wings

	effectiveDrag := math.Max(0,
		raw.Drag*(m.DragBase+wingLength*m.DragWingLength)+
			math.Abs(wingSlope)*m.DragSlopeAbs+
			math.Max(0, wingSlope)*m.DragSlopePositive)

	var finManeuver float64
	if totals.TailCount > 0 {
		finManeuver = (finLength*m.FinLength + finHeight*m.FinHeight) * tails
	}

	wingTerm := m.StabilityNoWings
	if totals.WingCount > 0 {
		wingTerm = m.StabilityWinged + wings*m.StabilityPerWing
	}

	stability := nonNegativeRound(raw.Stability +
		float64(totals.CoreCount)*m.StabilityPerCore +
		wingTerm +
		finManeuver*m.StabilityFin -
		totals.Weight*m.StabilityWeight)

	control := nonNegativeRound(raw.Control +
		raw.Guidance*m.ControlGuidance +
		wings*m.ControlPerWing +
		finManeuver*m.ControlFin -
		math.Max(0, raw.Latency)*m.ControlLatency)

	return Scores{
		StabilityScore:  stability,
		ControlScore:    control,
		ManeuverScore:   nonNegativeRound(control*m.ManeuverControl + finManeuver*m.ManeuverFin + raw.Stability*m.ManeuverStability),
		LiftScore:       nonNegativeRound(effectiveLift - effectiveDrag*m.LiftScoreDrag),
		LiftToDragRatio: physics.RoundTo(effectiveLift/math.Max(1, effectiveDrag), 2),
		LockEase:        nonNegativeRound(raw.LockEase + raw.Guidance*m.LockEaseGuidance),
		DamageScore:     nonNegativeRound(raw.DamageRadius*m.DamageRadius + totals.Durability*m.DamageDurability),
		EnergyBalance:   physics.RoundTo(totals.EnergyOut-totals.EnergyIn, 1),
		EffectiveLift:   physics.RoundTo(effectiveLift, 1),
		EffectiveDrag:   physics.RoundTo(effectiveDrag, 1),
	}
}

func nonNegativeRound(x float64) float64 {
	return math.Max(0, physics.RoundHalfUp(x))
}
