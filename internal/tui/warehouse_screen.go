package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/autoshop/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// warehouseRow is a catalog part with the quantity on hand
type warehouseRow struct {
	part     *domain.Part
	quantity int
}

// WarehouseModel lists every catalog part with its stock and lets the
// player order more
type WarehouseModel struct {
	session *session

	rows    []warehouseRow
	pending []domain.PurchaseOrder
	balance decimal.Decimal
	cursor  int

	buying    bool
	quantity  textinput.Model
	statusMsg string
	err       error
}

type warehouseDataMsg struct {
	rows    []warehouseRow
	pending []domain.PurchaseOrder
	balance decimal.Decimal
}

// NewWarehouseModel creates a new warehouse screen model
func NewWarehouseModel(s *session) tea.Model {
	ti := textinput.New()
	ti.Placeholder = "1"
	ti.CharLimit = 4
	ti.Width = 6
	return &WarehouseModel{session: s, quantity: ti}
}

// IsCapturingInput returns true when the quantity form is open
func (m *WarehouseModel) IsCapturingInput() bool {
	return m.buying
}

func (m *WarehouseModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *WarehouseModel) loadData() tea.Cmd {
	a := m.session.app
	return func() tea.Msg {
		stock := make(map[string]int)
		for _, l := range a.Engine.WarehouseSnapshot() {
			stock[l.Part.Key()] = l.Quantity
		}

		parts := a.Catalog.All()
		rows := make([]warehouseRow, len(parts))
		for i, p := range parts {
			rows[i] = warehouseRow{part: p, quantity: stock[p.Key()]}
		}

		return warehouseDataMsg{
			rows:    rows,
			pending: a.Engine.PendingDeliveries(),
			balance: a.Engine.Balance(),
		}
	}
}

func (m *WarehouseModel) buy(part *domain.Part, quantity int) tea.Cmd {
	engine := m.session.app.Engine
	return func() tea.Msg {
		err := engine.BuyParts(context.Background(), part, quantity)
		return partsBoughtMsg{part: part.Name, quantity: quantity, err: err}
	}
}

func (m *WarehouseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case warehouseDataMsg:
		m.rows = msg.rows
		m.pending = msg.pending
		m.balance = msg.balance
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case partsBoughtMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Ordered %d x %s", msg.quantity, msg.part)
		return m, m.loadData()

	case RefreshDataMsg:
		return m, m.loadData()
	}

	if m.buying {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Buy):
			if len(m.rows) > 0 {
				m.buying = true
				m.quantity.SetValue("")
				return m, m.quantity.Focus()
			}
		}
	}
	return m, nil
}

func (m *WarehouseModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.buying = false
			m.quantity.Blur()
			return m, nil

		case "enter":
			raw := strings.TrimSpace(m.quantity.Value())
			if raw == "" {
				raw = "1"
			}
			qty, err := strconv.Atoi(raw)
			if err != nil || qty <= 0 {
				m.err = fmt.Errorf("invalid quantity: %s", raw)
				return m, nil
			}
			m.buying = false
			m.quantity.Blur()
			m.err = nil
			return m, m.buy(m.rows[m.cursor].part, qty)
		}
	}

	var cmd tea.Cmd
	m.quantity, cmd = m.quantity.Update(msg)
	return m, cmd
}

func (m *WarehouseModel) View() string {
	var s string

	s += titleStyle.Render("Warehouse") + "  " +
		subtitleStyle.Render("balance ") + balanceStyle.Render(formatMoney(m.balance)) + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).Render("  "+m.statusMsg) + "\n\n"
	}

	s += subtitleStyle.Render(fmt.Sprintf("  %-20s %-13s %5s %12s %12s", "Part", "Type", "Qty", "Price", "Value")) + "\n"
	for i, r := range m.rows {
		indicator := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			indicator = "> "
			style = style.Bold(true).Foreground(primaryColor)
		}
		if r.quantity == 0 && i != m.cursor {
			style = style.Foreground(mutedColor)
		}
		s += style.Render(fmt.Sprintf("%s%-20s %-13s %5d %12s %12s",
			indicator,
			truncateStr(r.part.Name, 20),
			string(r.part.Type),
			r.quantity,
			formatMoney(r.part.UnitPrice),
			formatMoney(domain.StockLine{Part: *r.part, Quantity: r.quantity}.Value()),
		)) + "\n"
	}

	if len(m.pending) > 0 {
		s += "\n" + titleStyle.Render("Awaiting delivery") + "\n"
		for _, po := range m.pending {
			s += fmt.Sprintf("  %d x %-20s arrives in %d car(s)\n", po.Quantity, po.Part.Name, po.TurnsUntilDelivery)
		}
	}

	if m.buying && m.cursor < len(m.rows) {
		s += "\n" + fmt.Sprintf("  Buy how many %s? %s", m.rows[m.cursor].part.Name, m.quantity.View()) + "\n"
	}

	if m.err != nil {
		s += "\n" + lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	if m.buying {
		s += "\n" + helpStyle.Render("  enter: confirm  esc: cancel")
	} else {
		s += "\n" + helpStyle.Render("  j/k: navigate  b/enter: buy  s: back to the counter")
	}
	return s
}
