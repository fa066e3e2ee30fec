package statusbar

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ba5f34")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#555555")).
				Foreground(lipgloss.Color("#CCCCCC")).
				Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#21ba45")).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)

// Tabs shown on the left of the bar.
var Tabs = []string{"Home", "Create DAC", "History"}

// Model is the status bar at the bottom of the screen.
type Model struct {
	width         int
	activeTab     string
	account       string
	authenticator string
	statusText    string
	statusIsError bool
}

// New creates a new status bar.
func New() Model {
	return Model{activeTab: Tabs[0]}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetActiveTab highlights the tab with the given label.
func (m *Model) SetActiveTab(label string) {
	m.activeTab = label
}

// SetAccount sets the logged-in account and the authenticator it came from.
// An empty account means logged out.
func (m *Model) SetAccount(account, authenticator string) {
	m.account = account
	m.authenticator = authenticator
}

// SetStatus sets a temporary status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.statusIsError = isError
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var tabsStr string
	for _, t := range Tabs {
		if t == m.activeTab {
			tabsStr += activeTabStyle.Render(t)
		} else {
			tabsStr += inactiveTabStyle.Render(t)
		}
	}

	var right string
	if m.statusText != "" {
		if m.statusIsError {
			right += errorTextStyle.Render(m.statusText)
		} else {
			right += statusTextStyle.Render(m.statusText)
		}
	}
	if m.account != "" {
		right += userStyle.Render(m.account + " via " + m.authenticator)
	} else {
		right += statusTextStyle.Render("L:login")
	}

	tabsWidth := lipgloss.Width(tabsStr)
	rightWidth := lipgloss.Width(right)
	gap := m.width - tabsWidth - rightWidth
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}
