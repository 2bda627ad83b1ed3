package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opd-ai/go-dronestrike/pkg/mission"
)

// LoadLevels reads level definitions. path is either a file holding a list
// of levels or a directory of single-level files, loaded in name order.
// Levels without an id are named after their file or position.
func LoadLevels(path string) ([]mission.Level, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels: %w", err)
	}

	var levels []mission.Level
	if info.IsDir() {
		levels, err = loadLevelDir(path)
	} else {
		err = readFile(path, &levels)
		for i := range levels {
			if levels[i].ID == "" {
				levels[i].ID = fmt.Sprintf("level%02d", i+1)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if err := ValidateLevels(levels); err != nil {
		return nil, fmt.Errorf("levels %s: %w", path, err)
	}
	return levels, nil
}

func loadLevelDir(dir string) ([]mission.Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	levels := make([]mission.Level, 0, len(names))
	for _, name := range names {
		var level mission.Level
		if err := readFile(filepath.Join(dir, name), &level); err != nil {
			return nil, err
		}
		if level.ID == "" {
			level.ID = strings.TrimSuffix(name, filepath.Ext(name))
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// ValidateLevels checks that level ids are unique and that every entity
// has usable geometry.
func ValidateLevels(levels []mission.Level) error {
	seen := make(map[string]bool, len(levels))
	for _, l := range levels {
		if seen[l.ID] {
			return invalid("duplicate level id %q", l.ID)
		}
		seen[l.ID] = true

		for i, o := range l.Obstacles {
			if !positive(o.Width) || !positive(o.Height) {
				return invalid("level %q obstacle %d has no area", l.ID, i)
			}
			if !finite(o.X, o.Y) || !nonNegative(o.Durability) {
				return invalid("level %q obstacle %d has invalid values", l.ID, i)
			}
		}
		for i, t := range l.Targets {
			if !finite(t.X, t.Y) || !nonNegative(t.Radius, t.Durability) {
				return invalid("level %q target %d has invalid values", l.ID, i)
			}
		}
		for i, b := range l.BonusItems {
			if !finite(b.X, b.Y) || !nonNegative(b.Radius) {
				return invalid("level %q bonus %d has invalid values", l.ID, i)
			}
		}
		for i, o := range l.Objectives {
			if o.Count < 0 {
				return invalid("level %q objective %d has a negative count", l.ID, i)
			}
		}
		if !finite(l.Wind.X, l.Wind.Y) || !nonNegative(l.TimeLimit, l.BudgetLimit) {
			return invalid("level %q has invalid limits or wind", l.ID)
		}
	}
	return nil
}

// FindLevel returns the level with the given id.
func FindLevel(levels []mission.Level, id string) (mission.Level, bool) {
	for _, l := range levels {
		if l.ID == id {
			return l, true
		}
	}
	return mission.Level{}, false
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func nonNegative(values ...float64) bool {
	for _, v := range values {
		if v < 0 {
			return false
		}
	}
	return finite(values...)
}
