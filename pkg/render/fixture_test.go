package render

import (
	"math/rand/v2"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/part"
)

// fakeCanvas records cells in memory.
type fakeCanvas struct {
	width, height int
	cells         map[[2]int]rune
	styles        map[[2]int]tcell.Style
	shows         int
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{
		width:  w,
		height: h,
		cells:  make(map[[2]int]rune),
		styles: make(map[[2]int]tcell.Style),
	}
}

func (c *fakeCanvas) Size() (int, int) { return c.width, c.height }

func (c *fakeCanvas) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	c.cells[[2]int{x, y}] = primary
	c.styles[[2]int{x, y}] = style
}

func (c *fakeCanvas) styleAt(x, y int) tcell.Style { return c.styles[[2]int{x, y}] }

func (c *fakeCanvas) Show() { c.shows++ }

func (c *fakeCanvas) at(x, y int) rune { return c.cells[[2]int{x, y}] }

func (c *fakeCanvas) row(y int) string {
	out := make([]rune, c.width)
	for x := range out {
		out[x] = c.at(x, y)
	}
	return string(out)
}

func (c *fakeCanvas) count(ch rune) int {
	n := 0
	for _, r := range c.cells {
		if r == ch {
			n++
		}
	}
	return n
}

func testState(t *testing.T, level mission.Level) *mission.State {
	t.Helper()
	catalog := part.NewCatalog([]part.Part{
		{ID: "core", Name: "Core", Category: part.CategoryCore, Weight: 10, Durability: 100},
		{ID: "wings", Name: "Wings", Category: part.CategoryWings, Weight: 4, Durability: 40,
			Stats: part.Stats{Lift: 10, Drag: 2}},
		{ID: "power", Name: "Battery", Category: part.CategoryPower, Weight: 5, Durability: 20, EnergyOut: 4},
	})
	b := build.DefaultBuild()
	b.Slots[build.SlotID(1, 0)] = "wings"
	b.Slots[build.SlotID(1, 2)] = "core"
	b.Slots[build.SlotID(2, 3)] = "power"
	summary := build.Calculate(b, catalog, build.Unlimited, build.Options{})

	s, err := mission.NewState(level, summary, build.NewDurabilityMap(summary),
		mission.WithRNG(rand.New(rand.NewPCG(1, 1))))
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	return s
}
