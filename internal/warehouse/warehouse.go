// Package warehouse is the shop's parts store. It owns the stock
// consistency rules: quantities never go negative and a part name
// (compared case-insensitively) maps to exactly one stock line.
//
// A Warehouse is not safe for concurrent use; the order engine serializes
// access to it together with the ledger.
package warehouse

import (
	"sort"

	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/domain"
)

type Warehouse struct {
	lines   map[string]*domain.StockLine
	pending []*domain.PurchaseOrder
}

// New creates an empty warehouse
func New() *Warehouse {
	return &Warehouse{
		lines: make(map[string]*domain.StockLine),
	}
}

// AddStock adds quantity units of part, creating the line on first use.
// A zero quantity registers the part without stocking it.
func (w *Warehouse) AddStock(part *domain.Part, quantity int) error {
	if part == nil {
		return apperror.InvalidArgument("part is required")
	}
	if err := part.Validate(); err != nil {
		return apperror.InvalidArgument("invalid part").WithCause(err)
	}
	if quantity < 0 {
		return apperror.InvalidArgument("quantity cannot be negative, got %d", quantity).
			WithDetail("part", part.Name)
	}

	key := part.Key()
	if line, ok := w.lines[key]; ok {
		line.Quantity += quantity
		return nil
	}

	w.lines[key] = &domain.StockLine{Part: *part, Quantity: quantity}
	return nil
}

// RemoveStock takes quantity units of the named part out of stock.
// A line that reaches zero is kept.
func (w *Warehouse) RemoveStock(partName string, quantity int) error {
	if quantity <= 0 {
		return apperror.InvalidArgument("quantity must be positive, got %d", quantity).
			WithDetail("part", partName)
	}

	line, ok := w.lines[domain.NormalizeName(partName)]
	if !ok {
		return apperror.InsufficientStock(partName, quantity, 0)
	}
	if line.Quantity < quantity {
		return apperror.InsufficientStock(line.Part.Name, quantity, line.Quantity)
	}

	line.Quantity -= quantity
	return nil
}

// HasStock reports whether at least quantity units of the part are on hand
func (w *Warehouse) HasStock(partName string, quantity int) bool {
	line, ok := w.lines[domain.NormalizeName(partName)]
	return ok && line.Quantity >= quantity
}

// HasPart is HasStock for a single unit
func (w *Warehouse) HasPart(partName string) bool {
	return w.HasStock(partName, 1)
}

// FindByName returns a copy of the stock line for the part, if any
func (w *Warehouse) FindByName(partName string) (domain.StockLine, bool) {
	line, ok := w.lines[domain.NormalizeName(partName)]
	if !ok {
		return domain.StockLine{}, false
	}
	return *line, true
}

// ListAvailable returns the lines with stock on hand, sorted by name
func (w *Warehouse) ListAvailable() []domain.StockLine {
	out := make([]domain.StockLine, 0, len(w.lines))
	for _, line := range w.lines {
		if line.Quantity > 0 {
			out = append(out, *line)
		}
	}
	sortLines(out)
	return out
}

// Snapshot returns every line, including empty ones, sorted by name
func (w *Warehouse) Snapshot() []domain.StockLine {
	out := make([]domain.StockLine, 0, len(w.lines))
	for _, line := range w.lines {
		out = append(out, *line)
	}
	sortLines(out)
	return out
}

// TotalUnits returns the number of units across all lines
func (w *Warehouse) TotalUnits() int {
	total := 0
	for _, line := range w.lines {
		total += line.Quantity
	}
	return total
}

func sortLines(lines []domain.StockLine) {
	sort.Slice(lines, func(i, j int) bool {
		ki, kj := lines[i].Part.Key(), lines[j].Part.Key()
		if ki != kj {
			return ki < kj
		}
		return lines[i].Part.Name < lines[j].Part.Name
	})
}
