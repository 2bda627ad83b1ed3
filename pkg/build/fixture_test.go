package build

import "github.com/opd-ai/go-dronestrike/pkg/part"

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
		{ID: "jet", Name: "Jet", Category: part.CategoryPower, Weight: 8, Durability: 30, Cost: 150, EnergyOut: 7},
	})
}

func testBuild() Build {
	b := DefaultBuild()
	b.Slots[SlotID(1, 2)] = "core"
	b.Slots[SlotID(1, 0)] = "wings"
	b.Slots[SlotID(1, 1)] = "tail"
	b.Slots[SlotID(2, 3)] = "power"
	b.Slots[SlotID(1, 3)] = "warhead"
	return b
}
