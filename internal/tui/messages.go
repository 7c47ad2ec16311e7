package tui

import (
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/service"
)

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// ShopRestartedMsg tells every screen that the engine was replaced
type ShopRestartedMsg struct{}

// arrivalMsg carries the next client's pending order
type arrivalMsg struct {
	order *domain.Order
	err   error
}

// orderResolvedMsg reports how the order at the counter ended
type orderResolvedMsg struct {
	outcome *service.Outcome
	err     error
}

// partsBoughtMsg reports the result of a purchase
type partsBoughtMsg struct {
	part     string
	quantity int
	err      error
}
