package tui

import (
	"fmt"

	"github.com/andy/autoshop/internal/ledger"
	tea "github.com/charmbracelet/bubbletea"
)

// LedgerModel shows the journal of money movements
type LedgerModel struct {
	session *session
	entries []ledger.Entry
}

type ledgerDataMsg struct {
	entries []ledger.Entry
}

// NewLedgerModel creates a new ledger screen model
func NewLedgerModel(s *session) tea.Model {
	return &LedgerModel{session: s}
}

func (m *LedgerModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *LedgerModel) loadData() tea.Cmd {
	engine := m.session.app.Engine
	return func() tea.Msg {
		return ledgerDataMsg{entries: engine.LedgerEntries()}
	}
}

func (m *LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ledgerDataMsg:
		m.entries = msg.entries
	case RefreshDataMsg:
		return m, m.loadData()
	}
	return m, nil
}

func (m *LedgerModel) View() string {
	s := titleStyle.Render("Ledger") + "\n\n"

	if len(m.entries) == 0 {
		return s + subtitleStyle.Render("  No money has moved yet.") + "\n"
	}

	s += subtitleStyle.Render(fmt.Sprintf("  %-8s %14s %14s  %s", "Time", "Amount", "Balance", "Reason")) + "\n"

	// Last 20, newest first
	shown := 0
	for i := len(m.entries) - 1; i >= 0 && shown < 20; i-- {
		e := m.entries[i]
		amount := e.Applied
		if e.Kind == ledger.EntryDebit {
			amount = amount.Neg()
		}
		note := e.Reason
		if !e.Applied.Equal(e.Requested) {
			note += fmt.Sprintf(" (requested %s)", formatMoney(e.Requested))
		}
		s += fmt.Sprintf("  %-8s %14s %14s  %s\n",
			e.At.Format("15:04:05"),
			formatSigned(amount),
			formatMoney(e.Balance),
			note,
		)
		shown++
	}
	return s
}
