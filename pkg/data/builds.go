package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/opd-ai/go-dronestrike/pkg/build"
)

// legacySlots maps the named slots of older saved builds onto grid cells.
var legacySlots = map[string]string{
	"wingLeft":  build.SlotID(1, 0),
	"tail":      build.SlotID(1, 1),
	"core":      build.SlotID(1, 2),
	"warhead":   build.SlotID(1, 3),
	"wingRight": build.SlotID(1, 4),
	"extra1":    build.SlotID(0, 1),
	"seeker":    build.SlotID(0, 2),
	"extra2":    build.SlotID(0, 3),
	"link":      build.SlotID(2, 1),
	"autopilot": build.SlotID(2, 2),
	"power":     build.SlotID(2, 3),
}

// LoadBuild reads a saved build. Missing tuning fields keep their defaults
// and legacy slot names are moved onto the grid.
func LoadBuild(path string) (build.Build, error) {
	raw := build.DefaultBuild()
	if err := readFile(path, &raw); err != nil {
		return build.DefaultBuild(), err
	}
	return NormalizeBuild(raw), nil
}

// SaveBuild writes b to path in the format its extension selects.
func SaveBuild(b build.Build, path string) error {
	out, err := encode(b.Clone(), FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode build: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write build %s: %w", path, err)
	}
	return nil
}

// NormalizeBuild returns a clean copy of raw: grid slots are kept, legacy
// slot names fill their grid cell only when it is still empty, and any
// other key is dropped.
func NormalizeBuild(raw build.Build) build.Build {
	out := build.DefaultBuild()
	if raw.Name != "" {
		out.Name = raw.Name
	}
	out.Tuning = build.NormalizeTuning(raw.Tuning)

	var legacy []string
	for slot, partID := range raw.Slots {
		if partID == "" {
			continue
		}
		if build.IsSlot(slot) {
			out.Slots[slot] = partID
			continue
		}
		if _, ok := legacySlots[slot]; ok {
			legacy = append(legacy, slot)
		}
	}

	sort.Strings(legacy)
	for _, slot := range legacy {
		cell := legacySlots[slot]
		if out.Slots[cell] == "" {
			out.Slots[cell] = raw.Slots[slot]
		}
	}
	return out
}
