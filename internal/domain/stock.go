package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// StockLine is one warehouse record: a part snapshot and its quantity on hand
type StockLine struct {
	Part     Part
	Quantity int
}

// Value returns the stock value at the part's unit price
func (l StockLine) Value() decimal.Decimal {
	return l.Part.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DefaultDeliveryDelay is the number of processed cars a supplier order
// takes to arrive when delivery delays are switched on
const DefaultDeliveryDelay = 2

// PurchaseOrder is a paid supplier order waiting for delivery
type PurchaseOrder struct {
	Part               Part
	Quantity           int
	Cost               decimal.Decimal
	TurnsUntilDelivery int
}

// NewPurchaseOrder creates a purchase order arriving after delay processed cars
func NewPurchaseOrder(part Part, quantity int, cost decimal.Decimal, delay int) *PurchaseOrder {
	return &PurchaseOrder{
		Part:               part,
		Quantity:           quantity,
		Cost:               cost,
		TurnsUntilDelivery: delay,
	}
}

// IsDelivered returns true once the delivery counter ran out
func (p *PurchaseOrder) IsDelivered() bool {
	return p.TurnsUntilDelivery <= 0
}

// Tick counts one processed car against the delivery delay
func (p *PurchaseOrder) Tick() {
	if p.TurnsUntilDelivery > 0 {
		p.TurnsUntilDelivery--
	}
}

// Validate returns an error if the purchase order is invalid
func (p *PurchaseOrder) Validate() error {
	if err := p.Part.Validate(); err != nil {
		return err
	}
	if p.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if p.TurnsUntilDelivery < 0 {
		return errors.New("delivery delay cannot be negative")
	}
	return nil
}
