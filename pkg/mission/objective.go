package mission

import (
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// ObjectiveType names what an objective counts.
type ObjectiveType string

const (
	ObjectiveDestroyTargets ObjectiveType = "destroyTargets"
	ObjectiveDestroyType    ObjectiveType = "destroyType"
	ObjectiveCollectBonus   ObjectiveType = "collectBonus"
)

// Objective is a goal shown to the player. Objectives report progress only;
// the mission outcome is graded by target damage.
type Objective struct {
	Type       ObjectiveType `json:"type" yaml:"type"`
	Count      int           `json:"count" yaml:"count"`
	TargetType string        `json:"targetType,omitempty" yaml:"targetType,omitempty"`
	Optional   bool          `json:"optional,omitempty" yaml:"optional,omitempty"`
	Text       string        `json:"text,omitempty" yaml:"text,omitempty"`
}

// ObjectiveProgress is an objective with its current count.
type ObjectiveProgress struct {
	Objective
	Current int  `json:"current"`
	Done    bool `json:"done"`
}

// Star rating thresholds on target damage percent.
const (
	ThreeStarPercent = 90.0
	TwoStarPercent   = 75.0
	OneStarPercent   = 60.0
)

// Stars maps a target damage percentage to a 0-3 rating.
func Stars(percent float64) int {
	switch {
	case percent >= ThreeStarPercent:
		return 3
	case percent >= TwoStarPercent:
		return 2
	case percent >= OneStarPercent:
		return 1
	default:
		return 0
	}
}

// Score weights.
const (
	scorePerKill   = 180
	scorePerBonus  = 70
	scorePerHealth = 0.7
	scorePerSecond = 4
)

func (s *State) refreshObjectives() {
	progress := make([]ObjectiveProgress, len(s.Objectives))
	for i, o := range s.Objectives {
		current := 0
		known := true
		switch o.Type {
		case ObjectiveDestroyTargets:
			current = s.DestroyedTargets
		case ObjectiveDestroyType:
			current = s.DestroyedByType[o.TargetType]
		case ObjectiveCollectBonus:
			current = s.CollectedBonus
		default:
			known = false
		}
		progress[i] = ObjectiveProgress{Objective: o, Current: current, Done: known && current >= o.Count}
	}
	s.Progress = progress
}

func (s *State) refreshRating() {
	if s.TotalTargetDurability <= 0 {
		s.TargetDamageDealt = 0
		s.TargetDamagePercent = 100
		s.Stars = 3
		return
	}

	var dealt float64
	for _, t := range s.Targets {
		dealt += math.Max(0, t.MaxDurability-t.Durability)
	}
	s.TargetDamageDealt = dealt
	s.TargetDamagePercent = physics.Clamp(100*dealt/s.TotalTargetDurability, 0, 100)
	s.Stars = Stars(s.TargetDamagePercent)
}

func (s *State) updateScore() {
	score := s.DamageDealt +
		scorePerKill*float64(s.DestroyedTargets) +
		scorePerBonus*float64(s.CollectedBonus) +
		math.Floor(scorePerHealth*s.Drone.Health) -
		math.Floor(scorePerSecond*s.Time)
	s.Score = math.Max(0, score)
}
