package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/opd-ai/go-dronestrike/pkg/mission"
)

// HUD returns the status lines shown under the play field: flight data,
// drone systems, and objectives or the outcome once the mission is over.
func HUD(s *mission.State) []string {
	flight := fmt.Sprintf("T %5.1f/%.0fs  HP %.0f/%.0f  SCORE %.0f  DMG %5.1f%% %s",
		s.Time, s.TimeLimit,
		math.Max(0, s.Drone.Health), s.Drone.MaxHealth,
		math.Round(s.Score),
		s.TargetDamagePercent, StarBar(s.Stars),
	)

	active := len(s.Parts.Active())
	systems := fmt.Sprintf("AP %-9s THR %3.0f%%  WIND %+.0f,%+.0f  PARTS %d/%d",
		s.Autopilot, s.Drone.Throttle*100, s.Wind.X, s.Wind.Y, active, len(s.Parts))
	if !s.Drone.Launched {
		systems += "  [space] launch"
	}

	return []string{flight, systems, statusLine(s)}
}

// StarBar renders a 0-3 star rating.
func StarBar(stars int) string {
	stars = max(0, min(3, stars))
	return strings.Repeat("★", stars) + strings.Repeat("☆", 3-stars)
}

func statusLine(s *mission.State) string {
	switch s.Status {
	case mission.StatusSuccess:
		return fmt.Sprintf("MISSION SUCCESS (%s)  %s  score %.0f", s.EndReason, StarBar(s.Stars), math.Round(s.Score))
	case mission.StatusFail:
		return fmt.Sprintf("MISSION FAILED (%s)  damage %.1f%% below %.0f%%",
			s.EndReason, s.TargetDamagePercent, mission.OneStarPercent)
	}

	parts := make([]string, 0, len(s.Progress))
	for _, p := range s.Progress {
		mark := "[ ]"
		if p.Done {
			mark = "[x]"
		}
		text := ObjectiveText(p.Objective)
		if p.Optional {
			text += "*"
		}
		parts = append(parts, fmt.Sprintf("%s %s %d/%d", mark, text, p.Current, p.Count))
	}
	return strings.Join(parts, "  ")
}

// ObjectiveText is the objective's authored text, or a generated one.
func ObjectiveText(o mission.Objective) string {
	if o.Text != "" {
		return o.Text
	}
	switch o.Type {
	case mission.ObjectiveDestroyTargets:
		return "destroy targets"
	case mission.ObjectiveDestroyType:
		return "destroy " + o.TargetType
	case mission.ObjectiveCollectBonus:
		return "collect bonuses"
	default:
		return string(o.Type)
	}
}
