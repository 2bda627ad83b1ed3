package data

import (
	"fmt"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

// Bundle is everything a mission is built from.
type Bundle struct {
	Parts  *part.Catalog
	Levels []mission.Level
	Build  build.Build
}

// Load reads the files files names. An empty BuildFile yields the empty
// default build.
func Load(files config.DataConfig) (*Bundle, error) {
	parts, err := LoadParts(files.PartsFile)
	if err != nil {
		return nil, err
	}
	levels, err := LoadLevels(files.LevelsFile)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels in %s", files.LevelsFile)
	}

	b := build.DefaultBuild()
	if files.BuildFile != "" {
		if b, err = LoadBuild(files.BuildFile); err != nil {
			return nil, err
		}
	}
	return &Bundle{Parts: parts, Levels: levels, Build: b}, nil
}

// Level returns the level called id, or the first level when id is empty.
func (b *Bundle) Level(id string) (mission.Level, error) {
	if id == "" {
		return b.Levels[0], nil
	}
	level, ok := FindLevel(b.Levels, id)
	if !ok {
		return mission.Level{}, fmt.Errorf("unknown level %q", id)
	}
	return level, nil
}
