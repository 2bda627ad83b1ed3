package mission

import (
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/event"
	"github.com/opd-ai/go-dronestrike/pkg/part"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// fixedRNG always picks the same index, clamped to the pool.
type fixedRNG int

func (f fixedRNG) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func testCatalog() *part.Catalog {
	return part.NewCatalog([]part.Part{
		{ID: "core", Name: "Core", Category: part.CategoryCore, Weight: 10, Durability: 100, Cost: 100,
			Stats: part.Stats{Stability: 4, Control: 2}},
		{ID: "wings", Name: "Wings", Category: part.CategoryWings, Weight: 4, Durability: 40, Cost: 60,
			Stats: part.Stats{Lift: 10, Drag: 2, Stability: 1}},
		{ID: "tail", Name: "Tail", Category: part.CategoryTail, Weight: 2, Durability: 30, Cost: 40,
			Stats: part.Stats{Stability: 2, Control: 3}},
		{ID: "power", Name: "Battery", Category: part.CategoryPower, Weight: 5, Durability: 20, Cost: 80,
			ThrustType: part.ThrustElectric, EnergyOut: 4},
		{ID: "warhead", Name: "Warhead", Category: part.CategoryWarhead, Weight: 6, Durability: 50, Cost: 50,
			EnergyIn: 1, Stats: part.Stats{DamageRadius: 1.5}},
	})
}

func testBuild() build.Build {
	b := build.DefaultBuild()
	b.Slots[build.SlotID(1, 0)] = "wings"
	b.Slots[build.SlotID(1, 1)] = "tail"
	b.Slots[build.SlotID(1, 2)] = "core"
	b.Slots[build.SlotID(1, 3)] = "warhead"
	b.Slots[build.SlotID(2, 3)] = "power"
	return b
}

func testSummary() build.Summary {
	return build.Calculate(testBuild(), testCatalog(), build.Unlimited, build.Options{})
}

func testLevel() Level {
	return Level{
		ID: "test",
		Targets: []TargetDef{
			{ID: "t1", X: 900, Y: 500, TargetType: "radar", Durability: 100},
			{ID: "t2", X: 1000, Y: 500, TargetType: "tank", Durability: 100},
		},
		Obstacles: []ObstacleDef{
			{ID: "wall", X: 600, Y: 380, Width: 40, Height: 200, Material: MaterialMetal, Durability: 100},
		},
		BonusItems: []BonusDef{{ID: "b1", X: 400, Y: 200, Radius: 14}},
		Objectives: []Objective{
			{Type: ObjectiveDestroyTargets, Count: 2},
			{Type: ObjectiveDestroyType, TargetType: "radar", Count: 1},
			{Type: ObjectiveCollectBonus, Count: 1, Optional: true},
			{Type: "escort", Count: 1},
		},
	}
}

func newTestState(t *testing.T, level Level, rng RNG) *State {
	t.Helper()
	summary := testSummary()
	s, err := NewState(level, summary, build.NewDurabilityMap(summary), WithRNG(rng))
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	return s
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// placeDrone puts a launched drone at p moving with v.
func placeDrone(s *State, p, v physics.Vector2D) {
	s.Drone.Launched = true
	s.Drone.Position = p
	s.Drone.Velocity = v
}

func firstEvent(s *State, want string) *event.MissionEvent {
	for _, e := range s.Events {
		if e.Kind() == want {
			return e
		}
	}
	return nil
}

func countEvents(s *State, want string) int {
	n := 0
	for _, e := range s.Events {
		if e.Kind() == want {
			n++
		}
	}
	return n
}
