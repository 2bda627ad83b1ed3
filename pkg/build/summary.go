package build

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/part"
	"github.com/opd-ai/go-dronestrike/pkg/physics"
)

// Unlimited is a budget limit no build can exceed.
var Unlimited = math.Inf(1)

// Options relax validation. Suppressed conditions surface as warnings.
type Options struct {
	IgnoreBudget bool `json:"ignoreBudget"`
	IgnoreEnergy bool `json:"ignoreEnergy"`
}

// SelectedPart pairs an occupied slot with its resolved catalog part.
type SelectedPart struct {
	SlotID string
	Part   *part.Part
}

// Totals are the summed physical quantities and role counts of a build.
type Totals struct {
	Weight         float64               `json:"weight"`
	Durability     float64               `json:"durability"`
	EnergyIn       float64               `json:"energyIn"`
	EnergyOut      float64               `json:"energyOut"`
	Cost           float64               `json:"cost"`
	CoreCount      int                   `json:"coreCount"`
	WingCount      int                   `json:"wingCount"`
	TailCount      int                   `json:"tailCount"`
	PowerCount     int                   `json:"powerCount"`
	WarheadCount   int                   `json:"warheadCount"`
	SeekerCount    int                   `json:"seekerCount"`
	SelectedCount  int                   `json:"selectedCount"`
	CategoryCounts map[part.Category]int `json:"categoryCounts"`
}

// Stats combines the raw summed part stats with the derived scores. Note
// that Scores.LockEase is the derived value while Raw.LockEase is the sum.
type Stats struct {
	Raw part.Stats `json:"raw"`
	Scores
}

// Validation reports whether a build may fly.
type Validation struct {
	IsValid   bool     `json:"isValid"`
	Reasons   []string `json:"reasons"`
	Warnings  []string `json:"warnings"`
	Overrides Options  `json:"overrides"`
}

// Summary is the derived view of a build. It is a value; recomputation
// produces a new Summary rather than editing one in place.
type Summary struct {
	SelectedParts []SelectedPart `json:"-"`
	Totals        Totals         `json:"totals"`
	Tuning        Tuning         `json:"tuning"`
	Stats         Stats          `json:"stats"`
	Validation    Validation     `json:"validation"`
}

// HasCategory reports whether the summary counts at least one part of cat.
func (s Summary) HasCategory(cat part.Category) bool {
	return s.Totals.CategoryCounts[cat] > 0
}

// Summarizer computes summaries with a given stat model.
type Summarizer struct {
	Model StatModel
}

// NewSummarizer returns a summarizer using model.
func NewSummarizer(model StatModel) *Summarizer {
	return &Summarizer{Model: model}
}

var defaultSummarizer = NewSummarizer(DefaultStatModel())

// Calculate summarizes b with the default stat model.
func Calculate(b Build, parts part.Lookup, budget float64, opts Options) Summary {
	return defaultSummarizer.Calculate(b, parts, budget, opts)
}

// Calculate aggregates every occupied slot of b. Part ids missing from the
// catalog are skipped. Validation blocks builds without a core, over budget
// or with a negative energy balance unless the matching option is set.
func (s *Summarizer) Calculate(b Build, parts part.Lookup, budget float64, opts Options) Summary {
	var t tally
	var selected []SelectedPart
	for _, slotID := range b.OccupiedSlots() {
		p, ok := parts.Part(b.Slots[slotID])
		if !ok {
			continue
		}
		selected = append(selected, SelectedPart{SlotID: slotID, Part: p})
		t.add(p.Weight, p.Durability, p.EnergyIn, p.EnergyOut, p.Cost, p.Category, p.Stats)
	}

	totals := t.totals()
	tuning := NormalizeTuning(b.Tuning)
	scores := s.Model.Derive(t.stats, totals, tuning)

	return Summary{
		SelectedParts: selected,
		Totals:        totals,
		Tuning:        tuning,
		Stats:         Stats{Raw: t.stats, Scores: scores},
		Validation:    validate(totals, scores, budget, opts),
	}
}

func validate(totals Totals, scores Scores, budget float64, opts Options) Validation {
	v := Validation{Overrides: opts, Reasons: []string{}, Warnings: []string{}}
	overBudget := totals.Cost > budget
	negativeEnergy := scores.EnergyBalance < 0

	if totals.CoreCount <= 0 {
		v.Reasons = append(v.Reasons, "at least one core part is required")
	}
	if overBudget && !opts.IgnoreBudget {
		v.Reasons = append(v.Reasons, fmt.Sprintf("budget exceeded: %.0f / %.0f", totals.Cost, budget))
	}
	if negativeEnergy && !opts.IgnoreEnergy {
		v.Reasons = append(v.Reasons, fmt.Sprintf("energy balance is negative: %.1f", scores.EnergyBalance))
	}

	if totals.WingCount == 0 {
		v.Warnings = append(v.Warnings, "no wings: control will be very difficult")
	}
	if totals.PowerCount <= 0 {
		v.Warnings = append(v.Warnings, "a propulsion system (electric, gasoline or jet) is recommended")
	}
	if overBudget && opts.IgnoreBudget {
		v.Warnings = append(v.Warnings, fmt.Sprintf("override: budget exceeded (%.0f / %.0f)", totals.Cost, budget))
	}
	if negativeEnergy && opts.IgnoreEnergy {
		v.Warnings = append(v.Warnings, fmt.Sprintf("override: energy balance is negative (%.1f)", scores.EnergyBalance))
	}

	v.IsValid = len(v.Reasons) == 0
	return v
}

// tally accumulates part contributions. Both the catalog summary and the
// live recompute feed it so the two can never drift apart.
type tally struct {
	weight, durability  float64
	energyIn, energyOut float64
	cost                float64
	stats               part.Stats
	counts              map[part.Category]int
	n                   int
}

func (t *tally) add(weight, durability, energyIn, energyOut, cost float64, cat part.Category, stats part.Stats) {
	if t.counts == nil {
		t.counts = make(map[part.Category]int)
	}
	t.weight += finite(weight)
	t.durability += finite(durability)
	t.energyIn += finite(energyIn)
	t.energyOut += finite(energyOut)
	t.cost += finite(cost)
	t.stats = t.stats.Add(finiteStats(stats))
	t.counts[cat]++
	t.n++
}

func (t *tally) totals() Totals {
	counts := make(map[part.Category]int, len(t.counts))
	for k, v := range t.counts {
		counts[k] = v
	}
	return Totals{
		Weight:         physics.RoundTo(t.weight, 1),
		Durability:     physics.RoundHalfUp(t.durability),
		EnergyIn:       physics.RoundTo(t.energyIn, 1),
		EnergyOut:      physics.RoundTo(t.energyOut, 1),
		Cost:           physics.RoundHalfUp(t.cost),
		CoreCount:      counts[part.CategoryCore],
		WingCount:      counts[part.CategoryWings],
		TailCount:      counts[part.CategoryTail],
		PowerCount:     counts[part.CategoryPower],
		WarheadCount:   counts[part.CategoryWarhead],
		SeekerCount:    counts[part.CategorySeeker],
		SelectedCount:  t.n,
		CategoryCounts: counts,
	}
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func finiteStats(s part.Stats) part.Stats {
	return part.Stats{
		Stability:    finite(s.Stability),
		Lift:         finite(s.Lift),
		Drag:         finite(s.Drag),
		Control:      finite(s.Control),
		Guidance:     finite(s.Guidance),
		DamageRadius: finite(s.DamageRadius),
		LockEase:     finite(s.LockEase),
		Latency:      finite(s.Latency),
		JamResist:    finite(s.JamResist),
	}
}
