package warehouse

import (
	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/domain"
)

// Enqueue registers a paid supplier order. Orders with no delay are
// stocked immediately.
func (w *Warehouse) Enqueue(po *domain.PurchaseOrder) error {
	if po == nil {
		return apperror.InvalidArgument("purchase order is required")
	}
	if err := po.Validate(); err != nil {
		return apperror.InvalidArgument("invalid purchase order").WithCause(err)
	}
	if po.IsDelivered() {
		return w.AddStock(&po.Part, po.Quantity)
	}

	// Register the part so it shows up in the snapshot while in transit
	if err := w.AddStock(&po.Part, 0); err != nil {
		return err
	}
	w.pending = append(w.pending, po)
	return nil
}

// Tick advances every pending delivery by one processed car and stocks
// the ones that arrived. The delivered orders are returned in FIFO order.
func (w *Warehouse) Tick() []domain.PurchaseOrder {
	var delivered []domain.PurchaseOrder
	remaining := w.pending[:0]

	for _, po := range w.pending {
		po.Tick()
		if !po.IsDelivered() {
			remaining = append(remaining, po)
			continue
		}
		line := w.lines[po.Part.Key()]
		line.Quantity += po.Quantity
		delivered = append(delivered, *po)
	}

	// Clear the tail so dropped pointers can be collected
	for i := len(remaining); i < len(w.pending); i++ {
		w.pending[i] = nil
	}
	w.pending = remaining
	return delivered
}

// PendingDeliveries returns copies of the orders still in transit
func (w *Warehouse) PendingDeliveries() []domain.PurchaseOrder {
	out := make([]domain.PurchaseOrder, len(w.pending))
	for i, po := range w.pending {
		out[i] = *po
	}
	return out
}
