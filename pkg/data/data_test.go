package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"parts.yaml", FormatYAML},
		{"LEVELS.YML", FormatYAML},
		{"parts.json", FormatJSON},
		{"parts", FormatJSON},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := FormatOf(tc.path); got != tc.want {
				t.Errorf("FormatOf(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestLoadParts_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "parts.yaml", `
- id: core
  name: Core
  category: core
  weight: 10
  durability: 100
  cost: 120
  rarity: epic
  stats: {stability: 4, control: 2}
- id: engine
  name: Engine
  category: power
  weight: 8
  durability: 35
  energyOut: 5
  cost: 180
`)
	catalog, err := LoadParts(path)
	if err != nil {
		t.Fatalf("LoadParts failed: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("Expected 2 parts, got %d", catalog.Len())
	}

	core, ok := catalog.Part("core")
	if !ok {
		t.Fatal("core not found")
	}
	if core.Category != part.CategoryCore || core.Stats.Stability != 4 {
		t.Errorf("Unexpected core %+v", core)
	}
	if core.Material() != part.MaterialComposite {
		t.Errorf("Expected composite material from epic rarity, got %q", core.Material())
	}

	engine, _ := catalog.Part("engine")
	if engine.Thrust() != part.ThrustGasoline {
		t.Errorf("Expected inferred gasoline thrust, got %q", engine.Thrust())
	}
}

func TestParseParts_JSON(t *testing.T) {
	raw := []byte(`[{"id":"jet","name":"Jet","category":"power","energyOut":7,"thrustType":"jet"}]`)
	catalog, err := ParseParts(raw, FormatJSON)
	if err != nil {
		t.Fatalf("ParseParts failed: %v", err)
	}
	jet, ok := catalog.Part("jet")
	if !ok || jet.Thrust() != part.ThrustJet {
		t.Errorf("Unexpected jet %+v", jet)
	}
}

func TestValidateParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []part.Part
	}{
		{"missing id", []part.Part{{Category: part.CategoryCore}}},
		{"duplicate id", []part.Part{
			{ID: "a", Category: part.CategoryCore},
			{ID: "a", Category: part.CategoryWings},
		}},
		{"unknown category", []part.Part{{ID: "a"}}},
		{"negative weight", []part.Part{{ID: "a", Category: part.CategoryCore, Weight: -1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateParts(tc.parts); !errors.Is(err, ErrInvalidData) {
				t.Errorf("Expected ErrInvalidData, got %v", err)
			}
		})
	}
}

func TestLoadParts_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadParts(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}

	broken := writeFile(t, dir, "broken.json", `[{"id":`)
	if _, err := LoadParts(broken); err == nil {
		t.Error("Expected parse error")
	}

	unknown := writeFile(t, dir, "unknown.yaml", "- {id: x, category: rotor}\n")
	if _, err := LoadParts(unknown); !errors.Is(err, ErrInvalidData) {
		t.Errorf("Expected ErrInvalidData, got %v", err)
	}
}

func TestLoadLevels_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "levels.yaml", `
- id: first
  timeLimit: 60
  wind: {x: -14, y: 0}
  launchPoint: {x: 120, y: 400}
  obstacles:
    - {x: 560, y: 360, width: 36, height: 246, material: metal, durability: 140}
  targets:
    - {x: 930, y: 580, targetType: tank, durability: 160}
  objectives:
    - {type: destroyType, targetType: tank, count: 1}
- name: Unnamed
`)
	levels, err := LoadLevels(path)
	if err != nil {
		t.Fatalf("LoadLevels failed: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(levels))
	}

	first := levels[0]
	if first.Wind.X != -14 || first.LaunchPoint == nil || first.LaunchPoint.Y != 400 {
		t.Errorf("Unexpected level %+v", first)
	}
	if first.Obstacles[0].Material != mission.MaterialMetal {
		t.Errorf("Expected metal obstacle, got %q", first.Obstacles[0].Material)
	}
	if first.Objectives[0].Type != mission.ObjectiveDestroyType || first.Objectives[0].TargetType != "tank" {
		t.Errorf("Unexpected objective %+v", first.Objectives[0])
	}
	if levels[1].ID != "level02" {
		t.Errorf("Expected generated id level02, got %q", levels[1].ID)
	}

	if _, ok := FindLevel(levels, "first"); !ok {
		t.Error("FindLevel did not find first")
	}
	if _, ok := FindLevel(levels, "nope"); ok {
		t.Error("FindLevel found a missing level")
	}
}

func TestLoadLevels_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "level02.json", `{"targets":[{"x":1,"y":2,"durability":10}]}`)
	writeFile(t, dir, "level01.yaml", "name: Opening\n")
	writeFile(t, dir, "notes.txt", "ignored")

	levels, err := LoadLevels(dir)
	if err != nil {
		t.Fatalf("LoadLevels failed: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(levels))
	}
	if levels[0].ID != "level01" || levels[0].Name != "Opening" {
		t.Errorf("Unexpected first level %+v", levels[0])
	}
	if levels[1].ID != "level02" || len(levels[1].Targets) != 1 {
		t.Errorf("Unexpected second level %+v", levels[1])
	}
}

func TestValidateLevels(t *testing.T) {
	tests := []struct {
		name   string
		levels []mission.Level
	}{
		{"duplicate id", []mission.Level{{ID: "a"}, {ID: "a"}}},
		{"flat obstacle", []mission.Level{{ID: "a", Obstacles: []mission.ObstacleDef{{Width: 10}}}}},
		{"negative target durability", []mission.Level{{ID: "a", Targets: []mission.TargetDef{{Durability: -5}}}}},
		{"negative bonus radius", []mission.Level{{ID: "a", BonusItems: []mission.BonusDef{{Radius: -1}}}}},
		{"negative objective count", []mission.Level{{ID: "a", Objectives: []mission.Objective{{Count: -1}}}}},
		{"negative time limit", []mission.Level{{ID: "a", TimeLimit: -10}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateLevels(tc.levels); !errors.Is(err, ErrInvalidData) {
				t.Errorf("Expected ErrInvalidData, got %v", err)
			}
		})
	}
}

func TestNormalizeBuild_LegacySlots(t *testing.T) {
	raw := build.Build{
		Name: "Old",
		Slots: map[string]string{
			"wingLeft":    "wing",
			"core":        "core",
			"cell-1-2":    "core2",
			"power":       "battery",
			"cell-0-0":    "",
			"unknownSlot": "x",
		},
		Tuning: build.Tuning{WingLength: 500, WingSlope: 0, FinLength: 100, FinHeight: 100},
	}

	got := NormalizeBuild(raw)

	want := map[string]string{
		"cell-1-0": "wing",
		"cell-1-2": "core2",
		"cell-2-3": "battery",
	}
	if len(got.Slots) != len(want) {
		t.Errorf("Expected %d slots, got %v", len(want), got.Slots)
	}
	for slot, id := range want {
		if got.Slots[slot] != id {
			t.Errorf("Slot %s = %q, want %q", slot, got.Slots[slot], id)
		}
	}
	if got.Tuning.WingLength != 160 {
		t.Errorf("Expected wing length clamped to 160, got %v", got.Tuning.WingLength)
	}
	if got.Name != "Old" {
		t.Errorf("Expected name Old, got %q", got.Name)
	}
}

func TestLoadBuild_PartialTuning(t *testing.T) {
	path := writeFile(t, t.TempDir(), "build.yaml", `
slots:
  tail: tail-basic
tuning:
  wingSlope: 12
`)
	b, err := LoadBuild(path)
	if err != nil {
		t.Fatalf("LoadBuild failed: %v", err)
	}
	if b.Name != build.DefaultBuildName {
		t.Errorf("Expected default name, got %q", b.Name)
	}
	if b.Slots["cell-1-1"] != "tail-basic" {
		t.Errorf("Expected legacy tail in cell-1-1, got %v", b.Slots)
	}
	want := build.Tuning{WingLength: 100, WingSlope: 12, FinLength: 100, FinHeight: 100}
	if b.Tuning != want {
		t.Errorf("Tuning = %+v, want %+v", b.Tuning, want)
	}
}

func TestSaveBuild_LoadBuild(t *testing.T) {
	dir := t.TempDir()
	b := build.DefaultBuild()
	b.Name = "Saved"
	b.Slots["cell-1-2"] = "core-foam"
	b.Tuning.FinHeight = 150

	for _, name := range []string{"build.yaml", "build.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveBuild(b, path); err != nil {
				t.Fatalf("SaveBuild failed: %v", err)
			}
			loaded, err := LoadBuild(path)
			if err != nil {
				t.Fatalf("LoadBuild failed: %v", err)
			}
			if loaded.Name != "Saved" || loaded.Slots["cell-1-2"] != "core-foam" || loaded.Tuning.FinHeight != 150 {
				t.Errorf("Unexpected build %+v", loaded)
			}
		})
	}
}

func TestShippedData(t *testing.T) {
	catalog, err := LoadParts(filepath.Join("..", "..", "data", "parts.yaml"))
	if err != nil {
		t.Fatalf("shipped catalog: %v", err)
	}
	for _, cat := range part.Categories() {
		if len(catalog.ByCategory(cat)) == 0 {
			t.Errorf("shipped catalog has no %s part", cat)
		}
	}

	levels, err := LoadLevels(filepath.Join("..", "..", "data", "levels.yaml"))
	if err != nil {
		t.Fatalf("shipped levels: %v", err)
	}
	if len(levels) == 0 {
		t.Fatal("no shipped levels")
	}

	starter, err := LoadBuild(filepath.Join("..", "..", "data", "build.yaml"))
	if err != nil {
		t.Fatalf("shipped build: %v", err)
	}
	summary := build.Calculate(starter, catalog, levels[0].Budget(), build.Options{})
	if !summary.Validation.IsValid {
		t.Errorf("starter build invalid on %s: %v", levels[0].ID, summary.Validation.Reasons)
	}
}
