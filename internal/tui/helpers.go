package tui

import (
	"strings"

	"github.com/andy/autoshop/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// formatMoney formats money as "X,XXX.XX" with comma separators
func formatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	// Add commas to integer part
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	if negative {
		return "-" + string(result) + decPart
	}
	return string(result) + decPart
}

// formatSigned renders a ledger effect with its sign, green or red
func formatSigned(amount decimal.Decimal) string {
	switch {
	case amount.IsPositive():
		return gainStyle.Render("+" + formatMoney(amount))
	case amount.IsNegative():
		return lossStyle.Render(formatMoney(amount))
	default:
		return subtitleStyle.Render(formatMoney(amount))
	}
}

func statusStyle(status domain.OrderStatus) lipgloss.Style {
	switch status {
	case domain.OrderStatusCompleted:
		return completedStyle
	case domain.OrderStatusFailed:
		return failedStyle
	case domain.OrderStatusRefused:
		return refusedStyle
	default:
		return subtitleStyle
	}
}

func renderStatus(status domain.OrderStatus) string {
	return statusStyle(status).Render(strings.ToUpper(string(status)))
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
