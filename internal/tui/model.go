package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/autoshop/internal/app"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenShop Screen = iota
	ScreenWarehouse
	ScreenHistory
	ScreenLedger
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenShop:
		return "Shop"
	case ScreenWarehouse:
		return "Warehouse"
	case ScreenHistory:
		return "Order History"
	case ScreenLedger:
		return "Ledger"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	session       *session
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized, except the shop)
	shop      tea.Model
	warehouse tea.Model
	history   tea.Model
	ledger    tea.Model

	// Error state
	err error
}

// New creates a new root model
func New(a *app.App) (Model, error) {
	s, err := newSession(a)
	if err != nil {
		return Model{}, err
	}
	return Model{
		session:       s,
		currentScreen: ScreenShop,
		shop:          NewShopModel(s),
	}, nil
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.shop.Init()
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	refresh := func() tea.Msg { return RefreshDataMsg{} }
	switch screen {
	case ScreenShop:
		return refresh
	case ScreenWarehouse:
		if m.warehouse == nil {
			m.warehouse = NewWarehouseModel(m.session)
			return m.warehouse.Init()
		}
		return refresh
	case ScreenHistory:
		if m.history == nil {
			m.history = NewHistoryModel(m.session)
			return m.history.Init()
		}
		return refresh
	case ScreenLedger:
		if m.ledger == nil {
			m.ledger = NewLedgerModel(m.session)
			return m.ledger.Init()
		}
		return refresh
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) activeScreen() tea.Model {
	switch m.currentScreen {
	case ScreenShop:
		return m.shop
	case ScreenWarehouse:
		return m.warehouse
	case ScreenHistory:
		return m.history
	case ScreenLedger:
		return m.ledger
	}
	return nil
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.activeScreen().(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) restart() tea.Cmd {
	return func() tea.Msg {
		if err := m.session.restart(context.Background()); err != nil {
			return ErrorMsg{Err: err}
		}
		return ShopRestartedMsg{}
	}
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			m.err = nil

			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Restart):
				return m, m.restart()

			case key.Matches(msg, DefaultKeyMap.Shop):
				return m.switchTo(ScreenShop)

			case key.Matches(msg, DefaultKeyMap.Warehouse):
				return m.switchTo(ScreenWarehouse)

			case key.Matches(msg, DefaultKeyMap.History):
				return m.switchTo(ScreenHistory)

			case key.Matches(msg, DefaultKeyMap.Ledger):
				return m.switchTo(ScreenLedger)
			}
		}

	case SwitchScreenMsg:
		return m.switchTo(msg.Screen)

	case ShopRestartedMsg:
		// Drop cached screens so nothing shows the old shop
		m.warehouse, m.history, m.ledger = nil, nil, nil
		m.currentScreen = ScreenShop
		m.shop = NewShopModel(m.session)
		return m, m.shop.Init()

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Shop messages must reach the shop even while another screen is open
	switch msg.(type) {
	case arrivalMsg, orderResolvedMsg, shopDataMsg:
		var cmd tea.Cmd
		m.shop, cmd = m.shop.Update(msg)
		return m, cmd
	}

	// Route message to current screen
	var cmd tea.Cmd
	switch m.currentScreen {
	case ScreenShop:
		m.shop, cmd = m.shop.Update(msg)
	case ScreenWarehouse:
		if m.warehouse != nil {
			m.warehouse, cmd = m.warehouse.Update(msg)
		}
	case ScreenHistory:
		if m.history != nil {
			m.history, cmd = m.history.Update(msg)
		}
	case ScreenLedger:
		if m.ledger != nil {
			m.ledger, cmd = m.ledger.Update(msg)
		}
	}

	return m, cmd
}

func (m Model) switchTo(screen Screen) (tea.Model, tea.Cmd) {
	m.currentScreen = screen
	cmd := m.initScreen(screen)
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Header
	header := headerStyle.Render(fmt.Sprintf("autoshop - %s", m.currentScreen.String()))

	// Footer with navigation keys
	footer := footerStyle.Render("[S]hop  [W]arehouse  [H]istory  [L]edger  ctrl+r New shop  [Q]uit")

	// Current screen content
	content := "Loading..."
	if screen := m.activeScreen(); screen != nil {
		content = screen.View()
	}

	// Error display
	errorDisplay := ""
	if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	m, err := New(a)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
