package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type PartType string

const (
	PartTypeEngine       PartType = "engine"
	PartTypeBrakes       PartType = "brakes"
	PartTypeTransmission PartType = "transmission"
	PartTypeBattery      PartType = "battery"
	PartTypeTires        PartType = "tires"
	PartTypeSuspension   PartType = "suspension"
	PartTypeFilters      PartType = "filters"
	PartTypeElectrical   PartType = "electrical"
	PartTypeOther        PartType = "other"
)

// Valid reports whether t is a known part type
func (t PartType) Valid() bool {
	switch t {
	case PartTypeEngine, PartTypeBrakes, PartTypeTransmission, PartTypeBattery,
		PartTypeTires, PartTypeSuspension, PartTypeFilters, PartTypeElectrical, PartTypeOther:
		return true
	}
	return false
}

// Part is an immutable catalog entry describing one kind of spare part.
// UnitPrice is both what the supplier charges the shop and the base of the
// client's repair price.
type Part struct {
	Type        PartType
	Name        string
	Description string
	UnitPrice   decimal.Decimal
}

// NewPart creates a part with the given sale price
func NewPart(partType PartType, name string, unitPrice decimal.Decimal) *Part {
	return &Part{
		Type:      partType,
		Name:      strings.TrimSpace(name),
		UnitPrice: unitPrice,
	}
}

// Key returns the normalized lookup key of the part
func (p *Part) Key() string {
	return NormalizeName(p.Name)
}

// Validate returns an error if the part is invalid
func (p *Part) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("part name is required")
	}
	if p.UnitPrice.IsNegative() {
		return errors.New("unit price cannot be negative")
	}
	if p.Type != "" && !p.Type.Valid() {
		return errors.New("unknown part type " + string(p.Type))
	}
	return nil
}

// NormalizeName folds a part name into its case-insensitive lookup key
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
