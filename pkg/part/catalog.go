package part

import "sort"

// Lookup resolves part ids. A missing id reports ok=false.
type Lookup interface {
	Part(id string) (*Part, bool)
}

// Catalog is an id-indexed, read-only collection of parts.
type Catalog struct {
	byID map[string]*Part
	ids  []string
}

// NewCatalog indexes parts by id. Later duplicates replace earlier ones.
// Parts are copied so the catalog never aliases caller memory.
func NewCatalog(parts []Part) *Catalog {
	c := &Catalog{byID: make(map[string]*Part, len(parts))}
	for i := range parts {
		p := parts[i]
		if _, exists := c.byID[p.ID]; !exists {
			c.ids = append(c.ids, p.ID)
		}
		c.byID[p.ID] = &p
	}
	sort.Strings(c.ids)
	return c
}

// Part implements Lookup
func (c *Catalog) Part(id string) (*Part, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Len returns the number of distinct parts
func (c *Catalog) Len() int {
	return len(c.ids)
}

// IDs returns part ids in sorted order
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// ByCategory returns every part of the given category sorted by id.
func (c *Catalog) ByCategory(cat Category) []*Part {
	var out []*Part
	for _, id := range c.ids {
		if p := c.byID[id]; p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// UnlockedAt returns the parts available at the given player level.
func (c *Catalog) UnlockedAt(level int) []*Part {
	var out []*Part
	for _, id := range c.ids {
		if p := c.byID[id]; p.UnlockLevel <= level {
			out = append(out, p)
		}
	}
	return out
}
