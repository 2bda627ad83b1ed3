package mission

import "github.com/opd-ai/go-dronestrike/pkg/part"

// FlightModel holds the tuned gameplay constants of the mission step. They
// are not physical derivations; the defaults reproduce the shipped feel.
type FlightModel struct {
	Gravity float64 `json:"gravity" yaml:"gravity"`

	// Rotation
	AngularGain      float64 `json:"angularGain" yaml:"angularGain"`
	DampingBase      float64 `json:"dampingBase" yaml:"dampingBase"`
	DampingStability float64 `json:"dampingStability" yaml:"dampingStability"`
	DampingMin       float64 `json:"dampingMin" yaml:"dampingMin"`
	DampingMax       float64 `json:"dampingMax" yaml:"dampingMax"`

	// Aerodynamics and propulsion
	DragBase           float64 `json:"dragBase" yaml:"dragBase"`
	DragPerPoint       float64 `json:"dragPerPoint" yaml:"dragPerPoint"`
	LiftPerScore       float64 `json:"liftPerScore" yaml:"liftPerScore"`
	ThrustBase         float64 `json:"thrustBase" yaml:"thrustBase"`
	ElectricMultiplier float64 `json:"electricMultiplier" yaml:"electricMultiplier"`
	GasolineMultiplier float64 `json:"gasolineMultiplier" yaml:"gasolineMultiplier"`
	JetMultiplier      float64 `json:"jetMultiplier" yaml:"jetMultiplier"`

	// Control
	StabilizeGain      float64 `json:"stabilizeGain" yaml:"stabilizeGain"`
	StabilizeDamping   float64 `json:"stabilizeDamping" yaml:"stabilizeDamping"`
	TerminalRange      float64 `json:"terminalRange" yaml:"terminalRange"`
	CommandLimit       float64 `json:"commandLimit" yaml:"commandLimit"`
	AuthorityBase      float64 `json:"authorityBase" yaml:"authorityBase"`
	AuthorityMin       float64 `json:"authorityMin" yaml:"authorityMin"`
	AuthorityMax       float64 `json:"authorityMax" yaml:"authorityMax"`
	AssistMin          float64 `json:"assistMin" yaml:"assistMin"`
	AssistMax          float64 `json:"assistMax" yaml:"assistMax"`

	// Launch
	LaunchSpeedBase     float64 `json:"launchSpeedBase" yaml:"launchSpeedBase"`
	LaunchSpeedPerPower float64 `json:"launchSpeedPerPower" yaml:"launchSpeedPerPower"`

	// Damage
	ImpactAbsorb        float64 `json:"impactAbsorb" yaml:"impactAbsorb"`
	TargetExplodeSpeed  float64 `json:"targetExplodeSpeed" yaml:"targetExplodeSpeed"`
	ExplosionTTL        float64 `json:"explosionTTL" yaml:"explosionTTL"`
	ExplosionMinRadius  float64 `json:"explosionMinRadius" yaml:"explosionMinRadius"`
	ExplosionMaxRadius  float64 `json:"explosionMaxRadius" yaml:"explosionMaxRadius"`
	ObstacleBlastDamage float64 `json:"obstacleBlastDamage" yaml:"obstacleBlastDamage"`
	TargetBlastDamage   float64 `json:"targetBlastDamage" yaml:"targetBlastDamage"`

	// Drone health and part wear per unit of effective impact. Stability
	// shaves up to HealthAbsorbMax off HealthDamageBase, reaching it at
	// HealthAbsorbStability.
	HealthDamageBase      float64 `json:"healthDamageBase" yaml:"healthDamageBase"`
	HealthAbsorbMax       float64 `json:"healthAbsorbMax" yaml:"healthAbsorbMax"`
	HealthAbsorbStability float64 `json:"healthAbsorbStability" yaml:"healthAbsorbStability"`
	PartWear              float64 `json:"partWear" yaml:"partWear"`

	// Warhead sizing
	WarheadPowerStep   float64 `json:"warheadPowerStep" yaml:"warheadPowerStep"`
	WarheadPowerMax    float64 `json:"warheadPowerMax" yaml:"warheadPowerMax"`
	RadiusPowerStep    float64 `json:"radiusPowerStep" yaml:"radiusPowerStep"`
	RadiusPowerMax     float64 `json:"radiusPowerMax" yaml:"radiusPowerMax"`
	BlastRadiusBase    float64 `json:"blastRadiusBase" yaml:"blastRadiusBase"`
	BlastRadiusPerUnit float64 `json:"blastRadiusPerUnit" yaml:"blastRadiusPerUnit"`

	// Ground contact
	GroundBounce              float64 `json:"groundBounce" yaml:"groundBounce"`
	GroundFriction            float64 `json:"groundFriction" yaml:"groundFriction"`
	GroundImpact              float64 `json:"groundImpact" yaml:"groundImpact"`
	GroundExplodeSpeed        float64 `json:"groundExplodeSpeed" yaml:"groundExplodeSpeed"`
	GroundExplodePerRadius    float64 `json:"groundExplodePerRadius" yaml:"groundExplodePerRadius"`
	GroundExplodePerStability float64 `json:"groundExplodePerStability" yaml:"groundExplodePerStability"`

	// Obstacle contact
	MetalResistance          float64 `json:"metalResistance" yaml:"metalResistance"`
	ConcreteResistance       float64 `json:"concreteResistance" yaml:"concreteResistance"`
	ObstacleRamDamage        float64 `json:"obstacleRamDamage" yaml:"obstacleRamDamage"`
	ObstacleRamPerScore      float64 `json:"obstacleRamPerScore" yaml:"obstacleRamPerScore"`
	ObstacleImpact           float64 `json:"obstacleImpact" yaml:"obstacleImpact"`
	ObstacleBounce           float64 `json:"obstacleBounce" yaml:"obstacleBounce"`
	ObstacleRebound          float64 `json:"obstacleRebound" yaml:"obstacleRebound"`
	ObstacleExplodeSpeed     float64 `json:"obstacleExplodeSpeed" yaml:"obstacleExplodeSpeed"`
	ObstacleExplodePerRadius float64 `json:"obstacleExplodePerRadius" yaml:"obstacleExplodePerRadius"`

	// Target contact
	TargetRamDamage float64 `json:"targetRamDamage" yaml:"targetRamDamage"`
	TargetRamBase   float64 `json:"targetRamBase" yaml:"targetRamBase"`
	TargetImpact    float64 `json:"targetImpact" yaml:"targetImpact"`
	TargetSlowdown  float64 `json:"targetSlowdown" yaml:"targetSlowdown"`

	// Damage dealt credited per event
	ObstacleRamReward   float64 `json:"obstacleRamReward" yaml:"obstacleRamReward"`
	TargetRamReward     float64 `json:"targetRamReward" yaml:"targetRamReward"`
	ObstacleBlastReward float64 `json:"obstacleBlastReward" yaml:"obstacleBlastReward"`
	TargetBlastReward   float64 `json:"targetBlastReward" yaml:"targetBlastReward"`
	BonusReward         float64 `json:"bonusReward" yaml:"bonusReward"`
}

// DefaultFlightModel returns the shipped constants.
func DefaultFlightModel() FlightModel {
	return FlightModel{
		Gravity: 116,

		AngularGain:      4.6,
		DampingBase:      0.16,
		DampingStability: 220,
		DampingMin:       0.08,
		DampingMax:       0.56,

		DragBase:           0.11,
		DragPerPoint:       0.005,
		LiftPerScore:       0.85,
		ThrustBase:         1.5,
		ElectricMultiplier: 1,
		GasolineMultiplier: 1.3,
		JetMultiplier:      1.7,

		StabilizeGain:      0.7,
		StabilizeDamping:   0.22,
		TerminalRange:      320,
		CommandLimit:       1.8,
		AuthorityBase:      0.8,
		AuthorityMin:       0.35,
		AuthorityMax:       2.1,
		AssistMin:          0.1,
		AssistMax:          1.8,

		LaunchSpeedBase:     150,
		LaunchSpeedPerPower: 2.55,

		ImpactAbsorb:        8,
		TargetExplodeSpeed:  18,
		ExplosionTTL:        0.45,
		ExplosionMinRadius:  20,
		ExplosionMaxRadius:  190,
		ObstacleBlastDamage: 120,
		TargetBlastDamage:   180,

		HealthDamageBase:      1.2,
		HealthAbsorbMax:       0.55,
		HealthAbsorbStability: 180,
		PartWear:              0.8,

		WarheadPowerStep:   0.3,
		WarheadPowerMax:    0.9,
		RadiusPowerStep:    0.04,
		RadiusPowerMax:     0.6,
		BlastRadiusBase:    26,
		BlastRadiusPerUnit: 16,

		GroundBounce:              0.24,
		GroundFriction:            0.7,
		GroundImpact:              0.9,
		GroundExplodeSpeed:        26,
		GroundExplodePerRadius:    0.6,
		GroundExplodePerStability: 0.04,

		MetalResistance:          1.25,
		ConcreteResistance:       1.5,
		ObstacleRamDamage:        1.05,
		ObstacleRamPerScore:      180,
		ObstacleImpact:           0.8,
		ObstacleBounce:           0.3,
		ObstacleRebound:          0.45,
		ObstacleExplodeSpeed:     30,
		ObstacleExplodePerRadius: 0.8,

		TargetRamDamage: 1.4,
		TargetRamBase:   8,
		TargetImpact:    0.55,
		TargetSlowdown:  0.72,

		ObstacleRamReward:   90,
		TargetRamReward:     160,
		ObstacleBlastReward: 70,
		TargetBlastReward:   140,
		BonusReward:         40,
	}
}

// MaterialResistance is an obstacle's resistance: it divides the damage the
// obstacle takes and multiplies the impact felt by the drone.
func (m FlightModel) MaterialResistance(material string) float64 {
	switch material {
	case MaterialMetal:
		return m.MetalResistance
	case MaterialConcrete:
		return m.ConcreteResistance
	default:
		return 1
	}
}

// PowerMultiplier scales thrust by propulsion family.
func (m FlightModel) PowerMultiplier(t part.ThrustType) float64 {
	switch t {
	case part.ThrustElectric:
		return m.ElectricMultiplier
	case part.ThrustGasoline:
		return m.GasolineMultiplier
	case part.ThrustJet:
		return m.JetMultiplier
	default:
		return 0
	}
}
