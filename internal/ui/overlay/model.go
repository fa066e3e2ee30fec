// Package overlay renders the signing overlay on top of the active view.
package overlay

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dacforge/internal/render"
	"github.com/fragmede/dacforge/internal/store"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3).
			Width(50)

	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4583ba")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#21ba45")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#db2828")).Bold(true)
)

type Model struct {
	spinner spinner.Model
	visible bool
	width   int
	height  int
}

func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = pendingStyle
	return Model{spinner: sp}
}

// SetVisible tracks whether the overlay is on screen. The spinner only
// ticks while it is, so showing it again restarts the tick chain.
func (m *Model) SetVisible(show bool) tea.Cmd {
	if show == m.visible {
		return nil
	}
	m.visible = show
	if show {
		return m.spinner.Tick
	}
	return nil
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !m.visible {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders o centered in the viewport.
func (m Model) View(o store.SigningOverlay) string {
	var head string
	var border lipgloss.Color
	switch o.Status {
	case store.OverlaySuccess:
		head = successStyle.Render("✓ " + o.Msg)
		border = "#21ba45"
	case store.OverlayError:
		head = errorStyle.Render("✗ Transaction failed") + "\n\n" + render.Wrap(o.Msg, 44)
		border = "#db2828"
	default:
		head = m.spinner.View() + " " + pendingStyle.Render(o.Msg)
		border = "#4583ba"
	}
	box := boxStyle.BorderForeground(border).Render(head)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
