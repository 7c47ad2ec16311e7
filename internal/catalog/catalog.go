// Package catalog holds the set of part types the shop knows about.
package catalog

import (
	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/domain"
)

// Catalog is an immutable, case-insensitively unique list of parts.
// Order of insertion is preserved.
type Catalog struct {
	parts []*domain.Part
	byKey map[string]*domain.Part
}

// New builds a catalog, rejecting invalid parts and duplicate names
func New(parts ...*domain.Part) (*Catalog, error) {
	c := &Catalog{
		parts: make([]*domain.Part, 0, len(parts)),
		byKey: make(map[string]*domain.Part, len(parts)),
	}
	for _, p := range parts {
		if p == nil {
			return nil, apperror.InvalidArgument("catalog entry is required")
		}
		if err := p.Validate(); err != nil {
			return nil, apperror.InvalidArgument("invalid catalog entry %q", p.Name).WithCause(err)
		}
		if _, dup := c.byKey[p.Key()]; dup {
			return nil, apperror.InvalidArgument("duplicate catalog entry %q", p.Name)
		}
		cp := *p
		c.parts = append(c.parts, &cp)
		c.byKey[cp.Key()] = &cp
	}
	return c, nil
}

// Get looks a part up by name, ignoring case and surrounding spaces
func (c *Catalog) Get(name string) (*domain.Part, error) {
	p, ok := c.byKey[domain.NormalizeName(name)]
	if !ok {
		return nil, apperror.NotFound("part", name)
	}
	cp := *p
	return &cp, nil
}

// Len returns the number of parts
func (c *Catalog) Len() int {
	return len(c.parts)
}

// At returns a copy of the i-th part
func (c *Catalog) At(i int) *domain.Part {
	cp := *c.parts[i]
	return &cp
}

// All returns copies of every part in catalog order
func (c *Catalog) All() []*domain.Part {
	out := make([]*domain.Part, len(c.parts))
	for i := range c.parts {
		out[i] = c.At(i)
	}
	return out
}
