// Package build assembles drones from catalog parts. It owns the slot grid
// and build editing, the build summary (totals, derived flight scores and
// validation), the per-mission durability ledger, and the live summary that
// is re-derived from that ledger as parts break away.
package build

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/opd-ai/go-dronestrike/pkg/part"
)

// Grid dimensions of the airframe editor.
const (
	GridRows = 3
	GridCols = 5
)

// DefaultBuildName is used for builds created without a name.
const DefaultBuildName = "New Design"

var (
	// ErrUnknownSlot is returned when a slot id is not on the grid.
	ErrUnknownSlot = errors.New("unknown slot")
	// ErrUnknownPart is returned when a part id is not in the catalog.
	ErrUnknownPart = errors.New("unknown part")
)

// Slot is one cell of the build grid. Any part fits any cell.
type Slot struct {
	ID    string
	Label string
	Row   int
	Col   int
}

var slotDefinitions = func() []Slot {
	slots := make([]Slot, 0, GridRows*GridCols)
	for i := 0; i < GridRows*GridCols; i++ {
		row, col := i/GridCols, i%GridCols
		slots = append(slots, Slot{
			ID:    SlotID(row, col),
			Label: fmt.Sprintf("R%dC%d", row+1, col+1),
			Row:   row,
			Col:   col,
		})
	}
	return slots
}()

// SlotID returns the id of the cell at row, col.
func SlotID(row, col int) string {
	return fmt.Sprintf("cell-%d-%d", row, col)
}

// Slots returns the grid cells in row-major order.
func Slots() []Slot {
	out := make([]Slot, len(slotDefinitions))
	copy(out, slotDefinitions)
	return out
}

// IsSlot reports whether id names a grid cell.
func IsSlot(id string) bool {
	for _, s := range slotDefinitions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Tuning holds the player's aerodynamic adjustments. Lengths and heights
// are percentages of nominal size; slope is in degrees.
type Tuning struct {
	WingLength float64 `json:"wingLength" yaml:"wingLength" msgpack:"wingLength"`
	WingSlope  float64 `json:"wingSlope" yaml:"wingSlope" msgpack:"wingSlope"`
	FinLength  float64 `json:"finLength" yaml:"finLength" msgpack:"finLength"`
	FinHeight  float64 `json:"finHeight" yaml:"finHeight" msgpack:"finHeight"`
}

// DefaultTuning returns the neutral tuning.
func DefaultTuning() Tuning {
	return Tuning{WingLength: 100, WingSlope: 0, FinLength: 100, FinHeight: 100}
}

// NormalizeTuning clamps every field into its allowed range. Non-finite
// values fall back to the default for that field.
func NormalizeTuning(t Tuning) Tuning {
	d := DefaultTuning()
	return Tuning{
		WingLength: clampOr(t.WingLength, 10, 160, d.WingLength),
		WingSlope:  clampOr(t.WingSlope, -20, 22, d.WingSlope),
		FinLength:  clampOr(t.FinLength, 70, 170, d.FinLength),
		FinHeight:  clampOr(t.FinHeight, 70, 175, d.FinHeight),
	}
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

// Build is a named loadout: slot id to part id, plus tuning. Builds are
// values; every editing operation returns an independent copy.
type Build struct {
	Name   string            `json:"name" yaml:"name" msgpack:"name"`
	Slots  map[string]string `json:"slots" yaml:"slots" msgpack:"slots"`
	Tuning Tuning            `json:"tuning" yaml:"tuning" msgpack:"tuning"`
}

// DefaultBuild returns an empty build with neutral tuning.
func DefaultBuild() Build {
	return Build{
		Name:   DefaultBuildName,
		Slots:  make(map[string]string),
		Tuning: DefaultTuning(),
	}
}

// Clone returns a deep copy with normalized tuning.
func (b Build) Clone() Build {
	name := b.Name
	if name == "" {
		name = DefaultBuildName
	}
	slots := make(map[string]string, len(b.Slots))
	for k, v := range b.Slots {
		if v != "" {
			slots[k] = v
		}
	}
	return Build{Name: name, Slots: slots, Tuning: NormalizeTuning(b.Tuning)}
}

// OccupiedSlots returns the ids of non-empty slots in sorted order.
func (b Build) OccupiedSlots() []string {
	ids := make([]string, 0, len(b.Slots))
	for id, partID := range b.Slots {
		if partID != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// PlacePart puts partID into slotID. The input build is never modified; on
// error the returned build is an unchanged copy.
func PlacePart(b Build, slotID, partID string, parts part.Lookup) (Build, error) {
	next := b.Clone()
	if !IsSlot(slotID) {
		return next, fmt.Errorf("place %q: %w", slotID, ErrUnknownSlot)
	}
	if _, ok := parts.Part(partID); !ok {
		return next, fmt.Errorf("place %q in %q: %w", partID, slotID, ErrUnknownPart)
	}
	next.Slots[slotID] = partID
	return next, nil
}

// RemovePart empties slotID and returns the new build.
func RemovePart(b Build, slotID string) Build {
	next := b.Clone()
	delete(next.Slots, slotID)
	return next
}
