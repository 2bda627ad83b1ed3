// Package mission owns the state of one mission attempt and its per-frame
// transition: flight integration, collisions, structural damage, the
// warhead explosion, objective progress, damage rating and score.
//
// A State is exclusively owned by one driver. Renderers and other consumers
// read it between steps and never mutate it.
package mission

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

var (
	// ErrInvalidBuild is returned when a mission is started with a build
	// that failed validation.
	ErrInvalidBuild = errors.New("invalid build")
	// ErrAlreadyLaunched is returned by Launch after the drone has flown.
	ErrAlreadyLaunched = errors.New("drone already launched")
	// ErrMissionOver is returned by commands issued after the mission ended.
	ErrMissionOver = errors.New("mission is over")
)

var unlimited = math.Inf(1)

// Status is the mission outcome state. It only moves from active to one
// terminal value.
type Status int

const (
	StatusActive Status = iota
	StatusSuccess
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s is success or fail.
func (s Status) Terminal() bool {
	return s != StatusActive
}

// EndReason explains why a mission stopped.
type EndReason string

const (
	ReasonNone      EndReason = ""
	ReasonBounds    EndReason = "bounds"
	ReasonDestroyed EndReason = "destroyed"
	ReasonTimeout   EndReason = "timeout"
	ReasonCleared   EndReason = "targetsCleared"
)

// AutopilotMode selects how much automatic pitch correction is blended with
// the pilot's input.
type AutopilotMode string

const (
	AutopilotOff       AutopilotMode = "off"
	AutopilotStabilize AutopilotMode = "stabilize"
	AutopilotTerminal  AutopilotMode = "terminal"
)

// ParseAutopilotMode returns the named mode, or AutopilotOff for anything
// unrecognized.
func ParseAutopilotMode(name string) AutopilotMode {
	switch m := AutopilotMode(name); m {
	case AutopilotStabilize, AutopilotTerminal:
		return m
	default:
		return AutopilotOff
	}
}

// RNG is the randomness source for damage distribution. *rand.Rand
// satisfies it.
type RNG interface {
	IntN(n int) int
}

// Drone is the flying airframe.
type Drone struct {
	physics.FlightBody
	Radius    float64
	Health    float64
	MaxHealth float64
	Throttle  float64
	Launched  bool
	Destroyed bool
}

// Circle returns the drone's collision circle.
func (d *Drone) Circle() physics.Circle {
	return physics.Circle{Center: d.Position, Radius: d.Radius}
}

// Obstacle is a destructible rectangle.
type Obstacle struct {
	ID            string
	Entity        uint64
	Rect          physics.Rect
	Material      string
	Durability    float64
	MaxDurability float64
	Destroyed     bool
}

// Target is a destructible circle the mission is graded on.
type Target struct {
	ID            string
	Entity        uint64
	Center        physics.Vector2D
	Radius        float64
	TargetType    string
	Durability    float64
	MaxDurability float64
	Destroyed     bool
}

// BonusItem is a collectible pickup.
type BonusItem struct {
	ID        string
	Entity    uint64
	Center    physics.Vector2D
	Radius    float64
	Collected bool
}

// Explosion is the transient warhead detonation. At most one exists.
type Explosion struct {
	Position   physics.Vector2D
	Radius     float64
	PowerScale float64
	TTL        float64
	Reason     string
}

// State is the aggregate of one mission attempt. Build a fresh State for
// every attempt; a finished State is never reset.
type State struct {
	Level Level

	BaseSummary   build.Summary
	LiveSummary   build.Summary
	Parts         build.DurabilityMap
	DetachedParts []string

	Drone      Drone
	Obstacles  []*Obstacle
	Targets    []*Target
	BonusItems []*BonusItem
	Objectives []Objective
	Progress   []ObjectiveProgress

	Wind      physics.Vector2D
	GroundY   float64
	Bounds    Viewport
	TimeLimit float64
	Time      float64

	Score            float64
	DamageDealt      float64
	DestroyedTargets int
	DestroyedByType  map[string]int
	CollectedBonus   int

	Autopilot AutopilotMode
	Explosion *Explosion

	// LastExplosionAt is the mission time of the detonation, or -1.
	LastExplosionAt float64

	Status    Status
	EndReason EndReason
	Events    []*event.MissionEvent

	TotalTargetDurability float64
	TargetDamageDealt     float64
	TargetDamagePercent   float64
	Stars                 int
	Resolved              bool

	model      FlightModel
	summarizer *build.Summarizer
	rng        RNG
}

// Option customizes NewState.
type Option func(*State)

// WithViewport sets the play area. Non-positive dimensions keep the default.
func WithViewport(v Viewport) Option {
	return func(s *State) {
		if v.Width > 0 {
			s.Bounds.Width = v.Width
		}
		if v.Height > 0 {
			s.Bounds.Height = v.Height
		}
	}
}

// WithRNG injects the damage distribution randomness.
func WithRNG(rng RNG) Option {
	return func(s *State) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithFlightModel replaces the default flight constants.
func WithFlightModel(m FlightModel) Option {
	return func(s *State) {
		s.model = m
	}
}

// WithStatModel sets the stat model used to recompute the live summary as
// parts detach. It should match the model the summary was calculated with.
func WithStatModel(m build.StatModel) Option {
	return func(s *State) {
		s.summarizer = build.NewSummarizer(m)
	}
}

// NewState builds a mission from a level, the build's summary and its
// durability map. The level and map are copied; the caller keeps its own.
func NewState(level Level, summary build.Summary, parts build.DurabilityMap, opts ...Option) (*State, error) {
	if !summary.Validation.IsValid {
		return nil, fmt.Errorf("new mission %q: %w: %v", level.ID, ErrInvalidBuild, summary.Validation.Reasons)
	}

	s := &State{
		Level:           level,
		BaseSummary:     summary,
		LiveSummary:     summary,
		Parts:           parts.Clone(),
		Bounds:          DefaultViewport,
		Wind:            level.Wind,
		TimeLimit:       level.TimeLimit,
		DestroyedByType: make(map[string]int),
		Autopilot:       AutopilotOff,
		LastExplosionAt: -1,
		Status:          StatusActive,
		model:           DefaultFlightModel(),
		summarizer:      build.NewSummarizer(build.DefaultStatModel()),
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.TimeLimit <= 0 {
		s.TimeLimit = DefaultTimeLimit
	}
	s.GroundY = s.Bounds.Height - groundInset

	launch := DefaultLaunchPoint
	if level.LaunchPoint != nil {
		launch = *level.LaunchPoint
	}
	health := math.Max(80, 0.62*summary.Totals.Durability)
	s.Drone = Drone{
		FlightBody: physics.FlightBody{Position: launch, Angle: -0.1},
		Radius:     physics.Clamp(12+0.08*summary.Totals.Weight, 12, 30),
		Health:     health,
		MaxHealth:  health,
		Throttle:   1,
	}

	s.initEntities(level)
	s.Objectives = append([]Objective(nil), level.Objectives...)
	s.refreshObjectives()
	s.refreshRating()
	s.updateScore()
	return s, nil
}

func (s *State) initEntities(level Level) {
	for i, def := range level.Obstacles {
		basic := ecs.NewBasic()
		durability := orDefault(def.Durability, DefaultEntityDurability)
		s.Obstacles = append(s.Obstacles, &Obstacle{
			ID:            entityID(def.ID, "obstacle", i),
			Entity:        basic.ID(),
			Rect:          physics.Rect{X: def.X, Y: def.Y, Width: def.Width, Height: def.Height},
			Material:      def.Material,
			Durability:    durability,
			MaxDurability: durability,
		})
	}

	for i, def := range level.Targets {
		basic := ecs.NewBasic()
		durability := orDefault(def.Durability, DefaultEntityDurability)
		s.Targets = append(s.Targets, &Target{
			ID:            entityID(def.ID, "target", i),
			Entity:        basic.ID(),
			Center:        physics.Vector2D{X: def.X, Y: def.Y},
			Radius:        orDefault(def.Radius, DefaultTargetRadius),
			TargetType:    def.TargetType,
			Durability:    durability,
			MaxDurability: durability,
		})
		s.TotalTargetDurability += durability
	}

	for i, def := range level.BonusItems {
		basic := ecs.NewBasic()
		s.BonusItems = append(s.BonusItems, &BonusItem{
			ID:     entityID(def.ID, "bonus", i),
			Entity: basic.ID(),
			Center: physics.Vector2D{X: def.X, Y: def.Y},
			Radius: orDefault(def.Radius, DefaultBonusRadius),
		})
	}
}

func entityID(id, kind string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("%s-%d", kind, index+1)
}

func orDefault(v, fallback float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Model returns the flight constants in use.
func (s *State) Model() FlightModel {
	return s.model
}

// Exploded reports whether the warhead has detonated this mission.
func (s *State) Exploded() bool {
	return s.LastExplosionAt >= 0
}

// Launch fires the drone. Power is clamped to [15,100] percent and angle to
// [-80,20] degrees; negative angles point upward.
func (s *State) Launch(powerPercent, angleDeg float64) error {
	if s.Status.Terminal() {
		return ErrMissionOver
	}
	if s.Drone.Launched {
		return ErrAlreadyLaunched
	}

	power := physics.Clamp(finiteOr(powerPercent, 65), 15, 100)
	angle := physics.Clamp(finiteOr(angleDeg, -20), -80, 20) * math.Pi / 180
	speed := s.model.LaunchSpeedBase + s.model.LaunchSpeedPerPower*power

	s.Drone.Launched = true
	s.Drone.Angle = angle
	s.Drone.Velocity = physics.FromAngle(angle, speed)

	e := s.emit(event.Launch)
	e.Speed = speed
	return nil
}

// SetAutopilot switches the autopilot. Unknown names select off.
func (s *State) SetAutopilot(mode string) AutopilotMode {
	s.Autopilot = ParseAutopilotMode(mode)
	return s.Autopilot
}

// SetThrottle sets the thrust factor, clamped to [0,1]. Non-finite values
// are ignored.
func (s *State) SetThrottle(v float64) float64 {
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		s.Drone.Throttle = physics.Clamp(v, 0, 1)
	}
	return s.Drone.Throttle
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func (s *State) emit(t event.Type) *event.MissionEvent {
	e := event.NewMissionEvent(t, nil, s.Time)
	s.Events = append(s.Events, e)
	return e
}
