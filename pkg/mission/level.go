package mission

import "github.com/opd-ai/go-dronestrike/pkg/physics"

// Level defaults applied when a definition leaves a field empty.
const (
	DefaultTimeLimit        = 80.0
	DefaultTargetRadius     = 22.0
	DefaultBonusRadius      = 16.0
	DefaultEntityDurability = 100.0
)

// DefaultLaunchPoint is used when a level does not name one.
var DefaultLaunchPoint = physics.Vector2D{X: 140, Y: 370}

// Obstacle materials with a damage resistance multiplier. Any other
// material resists with multiplier 1.
const (
	MaterialMetal    = "metal"
	MaterialConcrete = "concrete"
)

// ObstacleDef is a rectangular obstacle as authored; X and Y are the top-left.
type ObstacleDef struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	Material   string  `json:"material,omitempty" yaml:"material,omitempty"`
	Durability float64 `json:"durability" yaml:"durability"`
}

// TargetDef is a circular target as authored.
type TargetDef struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Radius     float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	TargetType string  `json:"targetType" yaml:"targetType"`
	Durability float64 `json:"durability" yaml:"durability"`
}

// BonusDef is a collectible as authored.
type BonusDef struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Level is the static definition a mission is built from.
type Level struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	LaunchPoint *physics.Vector2D `json:"launchPoint,omitempty" yaml:"launchPoint,omitempty"`
	Obstacles   []ObstacleDef     `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	Targets     []TargetDef       `json:"targets,omitempty" yaml:"targets,omitempty"`
	BonusItems  []BonusDef        `json:"bonusItems,omitempty" yaml:"bonusItems,omitempty"`
	Objectives  []Objective       `json:"objectives,omitempty" yaml:"objectives,omitempty"`
	Wind        physics.Vector2D  `json:"wind" yaml:"wind"`
	TimeLimit   float64           `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"`

	// BudgetLimit of zero means unlimited.
	BudgetLimit float64 `json:"budgetLimit,omitempty" yaml:"budgetLimit,omitempty"`
}

// Budget returns the level's budget, or +Inf when none is set.
func (l Level) Budget() float64 {
	if l.BudgetLimit <= 0 {
		return unlimited
	}
	return l.BudgetLimit
}

// Viewport is the play area in pixels.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width" msgpack:"width"`
	Height float64 `json:"height" yaml:"height" msgpack:"height"`
}

// DefaultViewport is used when no viewport is given.
var DefaultViewport = Viewport{Width: 1200, Height: 640}

// groundInset is the distance of the ground line above the bottom edge.
const groundInset = 34
