package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRefused   OrderStatus = "refused"
	OrderStatusFailed    OrderStatus = "failed"
)

// IsTerminal returns true for statuses no transition leaves
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusRefused, OrderStatusFailed:
		return true
	}
	return false
}

// ErrOrderClosed is returned by transitions attempted from the wrong state
var ErrOrderClosed = errors.New("order transition not allowed")

// Order is one repair request. Fields are exported for display; all state
// changes go through the transition methods below.
type Order struct {
	ID              int64
	Client          Client
	BrokenPartName  string
	BrokenPartPrice decimal.Decimal
	LaborCost       decimal.Decimal
	RepairCost      decimal.Decimal
	Status          OrderStatus

	// UsedPartName is set only when the repair completed with the right part
	UsedPartName string

	// ConsumedPartName is the wrong part burnt by a failed repair
	ConsumedPartName string

	// Settlement is the signed ledger effect of the terminal transition
	Settlement decimal.Decimal

	CreatedAt   time.Time
	CompletedAt *time.Time // nil until terminal
}

// NewOrder creates a pending order. laborCost = price * (multiplier - 1).
func NewOrder(id int64, client Client, part *Part, laborMultiplier decimal.Decimal, createdAt time.Time) *Order {
	labor := part.UnitPrice.Mul(laborMultiplier.Sub(decimal.NewFromInt(1)))
	return &Order{
		ID:              id,
		Client:          client,
		BrokenPartName:  part.Name,
		BrokenPartPrice: part.UnitPrice,
		LaborCost:       labor,
		RepairCost:      part.UnitPrice.Add(labor),
		Status:          OrderStatusPending,
		CreatedAt:       createdAt,
	}
}

// IsTerminal returns true once the order reached Completed, Refused or Failed
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// Accept moves a pending order into the accepted (in-progress) state
func (o *Order) Accept() error {
	if o.Status != OrderStatusPending {
		return o.transitionError(OrderStatusAccepted)
	}
	o.Status = OrderStatusAccepted
	return nil
}

// Complete closes an accepted order repaired with usedPart
func (o *Order) Complete(usedPart string, revenue decimal.Decimal, at time.Time) error {
	if o.Status != OrderStatusAccepted {
		return o.transitionError(OrderStatusCompleted)
	}
	o.UsedPartName = usedPart
	o.Settlement = revenue
	o.close(OrderStatusCompleted, at)
	return nil
}

// Fail closes an accepted order botched with the wrong part
func (o *Order) Fail(consumedPart string, penalty decimal.Decimal, at time.Time) error {
	if o.Status != OrderStatusAccepted {
		return o.transitionError(OrderStatusFailed)
	}
	o.ConsumedPartName = consumedPart
	o.Settlement = penalty.Neg()
	o.close(OrderStatusFailed, at)
	return nil
}

// Refuse closes a pending or accepted order without any repair
func (o *Order) Refuse(penalty decimal.Decimal, at time.Time) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusAccepted {
		return o.transitionError(OrderStatusRefused)
	}
	o.Settlement = penalty.Neg()
	o.close(OrderStatusRefused, at)
	return nil
}

func (o *Order) close(status OrderStatus, at time.Time) {
	o.Status = status
	o.CompletedAt = &at
}

func (o *Order) transitionError(to OrderStatus) error {
	return fmt.Errorf("%w: order %d is %s, cannot become %s", ErrOrderClosed, o.ID, o.Status, to)
}

// Clone returns a copy safe to hand out to readers
func (o *Order) Clone() *Order {
	c := *o
	if o.CompletedAt != nil {
		at := *o.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// Validate returns an error if the order is invalid
func (o *Order) Validate() error {
	if o.ID <= 0 {
		return errors.New("order ID is required")
	}
	if o.BrokenPartName == "" {
		return errors.New("broken part is required")
	}
	if o.LaborCost.IsNegative() {
		return errors.New("labor cost cannot be negative")
	}
	if o.IsTerminal() != (o.CompletedAt != nil) {
		return errors.New("completed_at must be set exactly when the order is terminal")
	}
	return nil
}
