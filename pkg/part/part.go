// Package part defines the immutable catalog entries a drone is assembled
// from: categories, propulsion and material kinds, and the stat bundle every
// part contributes to a build.
package part

import (
	"fmt"
	"strings"
)

// Category is the functional role of a part. The set is closed; unknown
// names decode to CategoryUnknown and count toward no role.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCore
	CategoryWings
	CategoryTail
	CategoryWarhead
	CategorySeeker
	CategoryAutopilot
	CategoryLink
	CategoryPower
	CategoryExtra
)

var categoryNames = [...]string{
	CategoryUnknown:   "unknown",
	CategoryCore:      "core",
	CategoryWings:     "wings",
	CategoryTail:      "tail",
	CategoryWarhead:   "warhead",
	CategorySeeker:    "seeker",
	CategoryAutopilot: "autopilot",
	CategoryLink:      "link",
	CategoryPower:     "power",
	CategoryExtra:     "extra",
}

// Categories lists every known category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryCore, CategoryWings, CategoryTail, CategoryWarhead, CategorySeeker,
		CategoryAutopilot, CategoryLink, CategoryPower, CategoryExtra,
	}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return categoryNames[CategoryUnknown]
	}
	return categoryNames[c]
}

// ParseCategory maps a catalog name to a Category.
func ParseCategory(name string) Category {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range categoryNames {
		if n == name {
			return Category(i)
		}
	}
	return CategoryUnknown
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

// ThrustType is the propulsion family of a power part.
type ThrustType string

const (
	ThrustNone     ThrustType = ""
	ThrustElectric ThrustType = "electric"
	ThrustGasoline ThrustType = "gasoline"
	ThrustJet      ThrustType = "jet"
)

// Rank orders propulsion families from weakest to strongest.
func (t ThrustType) Rank() int {
	switch t {
	case ThrustElectric:
		return 1
	case ThrustGasoline:
		return 2
	case ThrustJet:
		return 3
	default:
		return 0
	}
}

// MaterialTier is the airframe material a part is built from.
type MaterialTier string

const (
	MaterialFoam      MaterialTier = "foam"
	MaterialWood      MaterialTier = "wood"
	MaterialComposite MaterialTier = "composite"
)

// Rarity is the catalog rarity band.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityEpic   Rarity = "epic"
)

// Stats is the per-part capability bundle. Builds sum these component-wise.
type Stats struct {
	Stability    float64 `json:"stability" yaml:"stability" msgpack:"stability"`
	Lift         float64 `json:"lift" yaml:"lift" msgpack:"lift"`
	Drag         float64 `json:"drag" yaml:"drag" msgpack:"drag"`
	Control      float64 `json:"control" yaml:"control" msgpack:"control"`
	Guidance     float64 `json:"guidance" yaml:"guidance" msgpack:"guidance"`
	DamageRadius float64 `json:"damageRadius" yaml:"damageRadius" msgpack:"damageRadius"`
	LockEase     float64 `json:"lockEase" yaml:"lockEase" msgpack:"lockEase"`
	Latency      float64 `json:"latency" yaml:"latency" msgpack:"latency"`
	JamResist    float64 `json:"jamResist" yaml:"jamResist" msgpack:"jamResist"`
}

// Add returns the component-wise sum of two bundles.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Stability:    s.Stability + o.Stability,
		Lift:         s.Lift + o.Lift,
		Drag:         s.Drag + o.Drag,
		Control:      s.Control + o.Control,
		Guidance:     s.Guidance + o.Guidance,
		DamageRadius: s.DamageRadius + o.DamageRadius,
		LockEase:     s.LockEase + o.LockEase,
		Latency:      s.Latency + o.Latency,
		JamResist:    s.JamResist + o.JamResist,
	}
}

// Part is an immutable catalog entry.
type Part struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Category     Category     `json:"category" yaml:"category"`
	Weight       float64      `json:"weight" yaml:"weight"`
	Durability   float64      `json:"durability" yaml:"durability"`
	EnergyIn     float64      `json:"energyIn" yaml:"energyIn"`
	EnergyOut    float64      `json:"energyOut" yaml:"energyOut"`
	Cost         float64      `json:"cost" yaml:"cost"`
	UnlockLevel  int          `json:"unlockLevel" yaml:"unlockLevel"`
	Rarity       Rarity       `json:"rarity,omitempty" yaml:"rarity,omitempty"`
	MaterialTier MaterialTier `json:"materialTier,omitempty" yaml:"materialTier,omitempty"`
	ThrustType   ThrustType   `json:"thrustType,omitempty" yaml:"thrustType,omitempty"`
	Stats        Stats        `json:"stats" yaml:"stats"`
}

// Material returns the part's material tier, deriving it from rarity when
// the catalog leaves it blank.
func (p *Part) Material() MaterialTier {
	if p.MaterialTier != "" {
		return p.MaterialTier
	}
	switch p.Rarity {
	case RarityEpic:
		return MaterialComposite
	case RarityRare:
		return MaterialWood
	default:
		return MaterialFoam
	}
}

// Thrust returns the propulsion family of a power part. Parts of other
// categories have none. A blank catalog value is inferred from output.
func (p *Part) Thrust() ThrustType {
	if p.Category != CategoryPower {
		return ThrustNone
	}
	if p.ThrustType != ThrustNone {
		return p.ThrustType
	}
	return InferThrust(p.EnergyOut)
}

// InferThrust picks a propulsion family from a power part's energy output.
func InferThrust(energyOut float64) ThrustType {
	switch {
	case energyOut >= 6:
		return ThrustJet
	case energyOut >= 3.5:
		return ThrustGasoline
	default:
		return ThrustElectric
	}
}

func (p *Part) String() string {
	return fmt.Sprintf("%s(%s)", p.ID, p.Category)
}
