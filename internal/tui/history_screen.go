package tui

import (
	"fmt"

	"github.com/andy/autoshop/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HistoryModel lists closed orders, newest first
type HistoryModel struct {
	session *session
	orders  []*domain.Order
	cursor  int
}

type historyDataMsg struct {
	orders []*domain.Order
}

// NewHistoryModel creates a new history screen model
func NewHistoryModel(s *session) tea.Model {
	return &HistoryModel{session: s}
}

func (m *HistoryModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *HistoryModel) loadData() tea.Cmd {
	engine := m.session.app.Engine
	return func() tea.Msg {
		history := engine.OrderHistory()
		// newest first
		for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
			history[i], history[j] = history[j], history[i]
		}
		return historyDataMsg{orders: history}
	}
}

func (m *HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		m.orders = msg.orders
		if m.cursor >= len(m.orders) {
			m.cursor = max(0, len(m.orders)-1)
		}
		return m, nil

	case RefreshDataMsg:
		return m, m.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.orders)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *HistoryModel) View() string {
	s := titleStyle.Render("Order History") + "\n\n"

	if len(m.orders) == 0 {
		return s + subtitleStyle.Render("  No cars processed yet.") + "\n"
	}

	limit := min(len(m.orders), 15)
	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}

	for i := start; i < start+limit && i < len(m.orders); i++ {
		o := m.orders[i]
		indicator := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			indicator = "> "
			style = style.Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s %s %s %s\n",
			style.Render(fmt.Sprintf("%s#%-4d %-22s %-16s", indicator, o.ID, truncateStr(o.Client.Name, 22), truncateStr(o.BrokenPartName, 16))),
			renderStatus(o.Status),
			formatSigned(o.Settlement),
			subtitleStyle.Render(o.CreatedAt.Format("15:04:05")),
		)
	}

	s += "\n" + m.renderDetail(m.orders[m.cursor])
	s += "\n" + helpStyle.Render("  j/k: navigate")
	return s
}

func (m *HistoryModel) renderDetail(o *domain.Order) string {
	lines := fmt.Sprintf("%s  %s\nVehicle: %s  %s\nRepair price: %s  (part %s + labor %s)",
		titleStyle.Render(fmt.Sprintf("Order #%d", o.ID)),
		renderStatus(o.Status),
		o.Client.Vehicle.String(), o.Client.Vehicle.Plate,
		formatMoney(o.RepairCost), formatMoney(o.BrokenPartPrice), formatMoney(o.LaborCost),
	)
	if o.UsedPartName != "" {
		lines += "\nUsed: " + o.UsedPartName
	}
	if o.ConsumedPartName != "" {
		lines += "\nWrongly installed: " + o.ConsumedPartName
	}
	if o.CompletedAt != nil {
		lines += "\nClosed: " + o.CompletedAt.Format("2006-01-02 15:04:05")
	}
	return boxStyle.Render(lines) + "\n"
}
