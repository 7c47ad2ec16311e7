package repository

import (
	"context"

	"github.com/andy/autoshop/internal/domain"
)

// OrderRepository holds the engine's two order collections: the active
// set of accepted orders and the history of terminal ones. IDs are unique
// across both.
type OrderRepository interface {
	AddActive(ctx context.Context, order *domain.Order) error
	GetActive(ctx context.Context, id int64) (*domain.Order, error) // Returns nil if not active
	RemoveActive(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]*domain.Order, error)

	AppendHistory(ctx context.Context, order *domain.Order) error
	GetFromHistory(ctx context.Context, id int64) (*domain.Order, error) // Returns nil if not found
	ListHistory(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error)

	// Exists reports whether the ID is known to either collection
	Exists(ctx context.Context, id int64) (bool, error)
}
