package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/domain"
)

// OrderRepo is the in-memory implementation of OrderRepository. It keeps
// the pointers it is given; the engine that owns it serializes access.
type OrderRepo struct {
	active  map[int64]*domain.Order
	history []*domain.Order
	index   map[int64]int // order ID -> position in history
}

// NewOrderRepo creates an empty OrderRepo
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		active: make(map[int64]*domain.Order),
		index:  make(map[int64]int),
	}
}

// AddActive inserts an accepted order into the active set
func (r *OrderRepo) AddActive(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return apperror.InvalidArgument("order is required")
	}
	if r.has(order.ID) {
		return apperror.InvalidArgument("order %d already exists", order.ID)
	}
	r.active[order.ID] = order
	return nil
}

// GetActive returns the active order with the given ID, or nil
func (r *OrderRepo) GetActive(ctx context.Context, id int64) (*domain.Order, error) {
	return r.active[id], nil
}

// RemoveActive drops an order from the active set
func (r *OrderRepo) RemoveActive(ctx context.Context, id int64) error {
	if _, ok := r.active[id]; !ok {
		return apperror.NotFound("active order", id)
	}
	delete(r.active, id)
	return nil
}

// ListActive returns active orders sorted by ID
func (r *OrderRepo) ListActive(ctx context.Context) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(r.active))
	for _, o := range r.active {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppendHistory records a terminal order
func (r *OrderRepo) AppendHistory(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return apperror.InvalidArgument("order is required")
	}
	if !order.IsTerminal() {
		return apperror.InvalidState("order %d is %s, only terminal orders go to history", order.ID, order.Status)
	}
	if _, ok := r.active[order.ID]; ok {
		return fmt.Errorf("order %d is still active", order.ID)
	}
	if _, dup := r.index[order.ID]; dup {
		return apperror.InvalidArgument("order %d already in history", order.ID)
	}
	r.index[order.ID] = len(r.history)
	r.history = append(r.history, order)
	return nil
}

// GetFromHistory returns the terminal order with the given ID, or nil
func (r *OrderRepo) GetFromHistory(ctx context.Context, id int64) (*domain.Order, error) {
	pos, ok := r.index[id]
	if !ok {
		return nil, nil
	}
	return r.history[pos], nil
}

// ListHistory returns terminal orders in resolution order, optionally
// filtered by status
func (r *OrderRepo) ListHistory(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(r.history))
	for _, o := range r.history {
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// Exists reports whether the ID is active or in history
func (r *OrderRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return r.has(id), nil
}

func (r *OrderRepo) has(id int64) bool {
	if _, ok := r.active[id]; ok {
		return true
	}
	_, ok := r.index[id]
	return ok
}
