package build

import (
	"sort"

	"github.com/opd-ai/go-dronestrike/pkg/part"
)

// PartState is the mutable structural record of one occupied slot during a
// mission. Detached only ever goes from false to true.
type PartState struct {
	SlotID        string
	ID            string
	Name          string
	Durability    float64
	MaxDurability float64
	Detached      bool
	Stats         part.Stats
	Weight        float64
	Category      part.Category
	MaterialTier  part.MaterialTier
	ThrustType    part.ThrustType
	EnergyIn      float64
	EnergyOut     float64
}

// DurabilityMap is the per-slot structural ledger of a drone in flight.
type DurabilityMap map[string]*PartState

// NewDurabilityMap snapshots every selected part of s at full durability.
// Entries copy catalog values and keep no reference back to the catalog.
func NewDurabilityMap(s Summary) DurabilityMap {
	m := make(DurabilityMap, len(s.SelectedParts))
	for _, sel := range s.SelectedParts {
		p := sel.Part
		m[sel.SlotID] = &PartState{
			SlotID:        sel.SlotID,
			ID:            p.ID,
			Name:          p.Name,
			Durability:    p.Durability,
			MaxDurability: p.Durability,
			Stats:         p.Stats,
			Weight:        p.Weight,
			Category:      p.Category,
			MaterialTier:  p.Material(),
			ThrustType:    p.Thrust(),
			EnergyIn:      p.EnergyIn,
			EnergyOut:     p.EnergyOut,
		}
	}
	return m
}

// Clone returns a deep copy.
func (m DurabilityMap) Clone() DurabilityMap {
	out := make(DurabilityMap, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

// SlotIDs returns slot ids in sorted order, giving callers a stable
// iteration order over the map.
func (m DurabilityMap) SlotIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Active returns the attached parts in slot order.
func (m DurabilityMap) Active() []*PartState {
	var out []*PartState
	for _, id := range m.SlotIDs() {
		if p := m[id]; !p.Detached {
			out = append(out, p)
		}
	}
	return out
}

// ActiveCount counts attached parts of the given category.
func (m DurabilityMap) ActiveCount(cat part.Category) int {
	n := 0
	for _, p := range m {
		if !p.Detached && p.Category == cat {
			n++
		}
	}
	return n
}

// ActiveThrust returns the propulsion family of the strongest attached power
// part, ties broken by energy output. ThrustNone means no power remains.
func (m DurabilityMap) ActiveThrust() part.ThrustType {
	var best *PartState
	for _, p := range m.Active() {
		if p.Category != part.CategoryPower {
			continue
		}
		if best == nil ||
			p.ThrustType.Rank() > best.ThrustType.Rank() ||
			(p.ThrustType.Rank() == best.ThrustType.Rank() && p.EnergyOut > best.EnergyOut) {
			best = p
		}
	}
	if best == nil {
		return part.ThrustNone
	}
	return best.ThrustType
}

// Recompute re-derives base from the attached parts of m with the default
// stat model.
func Recompute(m DurabilityMap, base Summary) Summary {
	return defaultSummarizer.Recompute(m, base)
}

// Recompute rebuilds totals and stats from the attached parts of m using
// their current durability. Cost, selected parts and validation carry over
// from base.
func (s *Summarizer) Recompute(m DurabilityMap, base Summary) Summary {
	var t tally
	for _, p := range m.Active() {
		t.add(p.Weight, p.Durability, p.EnergyIn, p.EnergyOut, 0, p.Category, p.Stats)
	}

	totals := t.totals()
	totals.Cost = base.Totals.Cost
	tuning := NormalizeTuning(base.Tuning)

	live := base
	live.Totals = totals
	live.Tuning = tuning
	live.Stats = Stats{Raw: t.stats, Scores: s.Model.Derive(t.stats, totals, tuning)}
	return live
}
