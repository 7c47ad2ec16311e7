package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/autoshop/internal/clientgen"
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ShopModel is the counter: one client at a time, accept or refuse
type ShopModel struct {
	session *session

	// Data
	current   *domain.Order // pending order of the client at the counter
	last      *service.Outcome
	balance   decimal.Decimal
	stats     service.Stats
	available []domain.StockLine
	bankrupt  bool
	noClients bool

	busy bool
	err  error
}

type shopDataMsg struct {
	balance   decimal.Decimal
	stats     service.Stats
	available []domain.StockLine
	bankrupt  bool
}

// NewShopModel creates a new shop model
func NewShopModel(s *session) tea.Model {
	return &ShopModel{session: s, busy: true}
}

func (m *ShopModel) Init() tea.Cmd {
	return tea.Batch(m.loadData(), m.nextClient())
}

func (m *ShopModel) loadData() tea.Cmd {
	engine := m.session.app.Engine
	return func() tea.Msg {
		return shopDataMsg{
			balance:   engine.Balance(),
			stats:     engine.Stats(),
			available: engine.AvailableStock(),
			bankrupt:  engine.IsBankrupt(),
		}
	}
}

func (m *ShopModel) nextClient() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		arrival, err := s.source.Next(context.Background())
		if err != nil {
			return arrivalMsg{err: err}
		}
		order, err := s.app.Engine.CreateOrderDefault(arrival.Client, arrival.BrokenPart)
		return arrivalMsg{order: order, err: err}
	}
}

func (m *ShopModel) accept(order *domain.Order) tea.Cmd {
	engine := m.session.app.Engine
	return func() tea.Msg {
		ctx := context.Background()
		if err := engine.AcceptOrder(ctx, order); err != nil {
			return orderResolvedMsg{err: err}
		}
		outcome, err := engine.ProcessOrder(ctx, order)
		return orderResolvedMsg{outcome: outcome, err: err}
	}
}

func (m *ShopModel) refuse(order *domain.Order) tea.Cmd {
	engine := m.session.app.Engine
	return func() tea.Msg {
		outcome, err := engine.RefuseOrder(context.Background(), order)
		return orderResolvedMsg{outcome: outcome, err: err}
	}
}

func (m *ShopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shopDataMsg:
		m.balance = msg.balance
		m.stats = msg.stats
		m.available = msg.available
		m.bankrupt = msg.bankrupt
		return m, nil

	case arrivalMsg:
		m.busy = false
		if errors.Is(msg.err, clientgen.ErrExhausted) {
			m.noClients = true
			return m, nil
		}
		m.err = msg.err
		m.current = msg.order
		return m, nil

	case orderResolvedMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		m.last = msg.outcome
		m.current = nil
		if msg.outcome.Bankrupt {
			m.busy = false
			return m, m.loadData()
		}
		return m, tea.Batch(m.loadData(), m.nextClient())

	case RefreshDataMsg:
		return m, m.loadData()

	case tea.KeyMsg:
		if m.busy || m.bankrupt || m.current == nil {
			return m, nil
		}
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Accept):
			m.busy = true
			return m, m.accept(m.current)
		case key.Matches(msg, DefaultKeyMap.Refuse):
			m.busy = true
			return m, m.refuse(m.current)
		}
	}

	return m, nil
}

func (m *ShopModel) View() string {
	var s string

	s += fmt.Sprintf("  Balance: %s    Cars: %d  (%s %d  %s %d  %s %d)\n",
		balanceStyle.Render(formatMoney(m.balance)),
		m.stats.CarsProcessed,
		completedStyle.Render("done"), m.stats.Completed,
		failedStyle.Render("botched"), m.stats.Failed,
		refusedStyle.Render("refused"), m.stats.Refused,
	)
	s += subtitleStyle.Render(fmt.Sprintf("  Revenue %s   Penalties %s   Spent on parts %s",
		formatMoney(m.stats.Revenue), formatMoney(m.stats.Penalties), formatMoney(m.stats.PurchaseSpend))) + "\n\n"

	if m.bankrupt {
		s += "  " + bankruptStyle.Render("BANKRUPT") + "\n\n"
		s += m.renderLast()
		s += "\n" + helpStyle.Render("  ctrl+r: open a new shop  q: quit")
		return s
	}

	switch {
	case m.noClients:
		s += subtitleStyle.Render("  No more clients today.") + "\n"
	case m.current == nil:
		s += subtitleStyle.Render("  Waiting for the next client...") + "\n"
	default:
		s += m.renderCounter()
	}

	if m.err != nil {
		s += "\n" + lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + m.renderLast()
	s += "\n" + helpStyle.Render("  a: accept and repair  x: refuse  w: buy parts")
	return s
}

func (m *ShopModel) renderCounter() string {
	o := m.current
	v := o.Client.Vehicle

	lines := fmt.Sprintf("%s\n%s  %s\n%s %s\n\n%s %s\n%s %s  (part %s + labor %s)\n%s",
		titleStyle.Render(o.Client.Name),
		v.String(), subtitleStyle.Render(v.Plate),
		subtitleStyle.Render("Contact:"), o.Client.Contact,
		subtitleStyle.Render("Broken:"), o.BrokenPartName,
		subtitleStyle.Render("Repair price:"), formatMoney(o.RepairCost),
		formatMoney(o.BrokenPartPrice), formatMoney(o.LaborCost),
		m.stockHint(o.BrokenPartName),
	)
	return boxStyle.Render(lines) + "\n"
}

// stockHint tells the player which branch accepting would take
func (m *ShopModel) stockHint(partName string) string {
	want := domain.NormalizeName(partName)
	for _, l := range m.available {
		if l.Part.Key() == want {
			return gainStyle.Render(fmt.Sprintf("In stock: %d", l.Quantity))
		}
	}
	if len(m.available) > 0 {
		return lossStyle.Render(fmt.Sprintf("Not in stock, the mechanic would use %s instead", m.available[0].Part.Name))
	}
	return refusedStyle.Render("Warehouse is empty")
}

func (m *ShopModel) renderLast() string {
	o := m.last
	if o == nil {
		return ""
	}

	detail := ""
	switch o.Status {
	case domain.OrderStatusCompleted:
		detail = fmt.Sprintf("repaired %s with %s", o.Order.BrokenPartName, o.Order.UsedPartName)
	case domain.OrderStatusFailed:
		detail = fmt.Sprintf("installed %s instead of %s", o.Order.ConsumedPartName, o.Order.BrokenPartName)
	case domain.OrderStatusRefused:
		detail = "client turned away"
	}

	s := fmt.Sprintf("  Last: #%d %s  %s  %s\n",
		o.Order.ID, renderStatus(o.Status), formatSigned(o.Settlement), subtitleStyle.Render(detail))
	for _, po := range o.Delivered {
		s += gainStyle.Render(fmt.Sprintf("  Delivered: %d x %s", po.Quantity, po.Part.Name)) + "\n"
	}
	return s
}
