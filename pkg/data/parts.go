package data

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-dronestrike/pkg/part"
)

// LoadParts reads a part catalog file: a flat list of part records.
func LoadParts(path string) (*part.Catalog, error) {
	var parts []part.Part
	if err := readFile(path, &parts); err != nil {
		return nil, err
	}
	if err := ValidateParts(parts); err != nil {
		return nil, fmt.Errorf("part catalog %s: %w", path, err)
	}
	return part.NewCatalog(parts), nil
}

// ParseParts decodes and validates a catalog held in memory.
func ParseParts(raw []byte, format Format) (*part.Catalog, error) {
	var parts []part.Part
	if err := decode(raw, format, &parts); err != nil {
		return nil, fmt.Errorf("failed to parse part catalog: %w", err)
	}
	if err := ValidateParts(parts); err != nil {
		return nil, err
	}
	return part.NewCatalog(parts), nil
}

// ValidateParts checks catalog integrity: unique non-empty ids, a known
// category and finite non-negative physical quantities.
func ValidateParts(parts []part.Part) error {
	seen := make(map[string]bool, len(parts))
	for i, p := range parts {
		if p.ID == "" {
			return invalid("part %d has no id", i)
		}
		if seen[p.ID] {
			return invalid("duplicate part id %q", p.ID)
		}
		seen[p.ID] = true

		if p.Category == part.CategoryUnknown {
			return invalid("part %q has an unknown category", p.ID)
		}
		for name, v := range map[string]float64{
			"weight":     p.Weight,
			"durability": p.Durability,
			"energyIn":   p.EnergyIn,
			"energyOut":  p.EnergyOut,
			"cost":       p.Cost,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return invalid("part %q has invalid %s %v", p.ID, name, v)
			}
		}
	}
	return nil
}
