package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dacforge/internal/coordinator"
	"github.com/fragmede/dacforge/internal/ual"
	"github.com/fragmede/dacforge/internal/ui/messages"
)

var (
	focusedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ba5f34"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#db2828"))
	unavailableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Strikethrough(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ba5f34")).Bold(true).
				Padding(1, 0)
	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#574943")).Padding(0, 2)
)

type focus int

const (
	focusList focus = iota
	focusAccount
)

// Model is the login modal: pick an authenticator, then enter the account.
type Model struct {
	names        []string
	avail        ual.Availability
	loading      bool
	spinner      spinner.Model
	selected     int
	focused      focus
	accountInput textinput.Model
	err          string
	submitting   bool
	width        int
	height       int
}

// New creates the modal for the given authenticator names. Availability is
// unknown until an AuthenticatorsLoadedMsg arrives.
func New(names []string, account string) Model {
	in := textinput.New()
	in.Placeholder = "account name"
	in.CharLimit = 12
	in.Width = 20
	in.SetValue(account)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = focusedStyle

	return Model{
		names:        names,
		loading:      len(names) > 0,
		spinner:      sp,
		accountInput: in,
	}
}

// Init starts the spinner shown while authenticators load.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Selected returns the highlighted authenticator name.
func (m Model) Selected() string {
	if m.selected < 0 || m.selected >= len(m.names) {
		return ""
	}
	return m.names[m.selected]
}

func (m Model) available(name string) bool {
	if m.avail == nil {
		return !m.loading
	}
	return m.avail[name]
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case coordinator.AuthenticatorsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.avail = msg.Availability
		return m, nil

	case coordinator.LoginResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = coordinator.ParseUalError(msg.Err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return messages.LoginCancelledMsg{} }
		case "tab", "shift+tab":
			if m.focused == focusList {
				m.focused = focusAccount
				return m, m.accountInput.Focus()
			}
			m.focused = focusList
			m.accountInput.Blur()
			return m, nil
		case "up", "k":
			if m.focused == focusList && m.selected > 0 {
				m.selected--
				return m, nil
			}
		case "down", "j":
			if m.focused == focusList && m.selected < len(m.names)-1 {
				m.selected++
				return m, nil
			}
		case "enter":
			if m.focused == focusList {
				m.focused = focusAccount
				return m, m.accountInput.Focus()
			}
			return m.submit()
		}
	}

	if m.focused != focusAccount {
		return m, nil
	}
	var cmd tea.Cmd
	m.accountInput, cmd = m.accountInput.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	name := m.Selected()
	account := strings.TrimSpace(m.accountInput.Value())
	switch {
	case name == "":
		m.err = "No authenticator configured"
		return m, nil
	case !m.available(name):
		m.err = name + " is not available"
		return m, nil
	case account == "":
		m.err = "Account name required"
		return m, nil
	}
	m.submitting = true
	m.err = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return messages.LoginRequestMsg{Authenticator: name, AccountName: account}
	})
}

// View renders the modal.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Login"))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Authenticator:"))
	sb.WriteString("\n")

	if len(m.names) == 0 {
		sb.WriteString(errorStyle.Render("none configured, set DACFORGE_AUTHENTICATORS"))
		sb.WriteString("\n")
	}
	for i, name := range m.names {
		cursor := "  "
		if i == m.selected {
			cursor = focusedStyle.Render("> ")
		}
		label := name
		switch {
		case m.loading && m.avail == nil:
			label += " " + m.spinner.View()
		case !m.available(name):
			label = unavailableStyle.Render(name)
		case i == m.selected && m.focused == focusList:
			label = focusedStyle.Render(name)
		}
		sb.WriteString(cursor + label + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Account:"))
	sb.WriteString("\n")
	sb.WriteString(m.accountInput.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n\n")
	}

	if m.submitting {
		sb.WriteString(m.spinner.View() + " Logging in...")
	} else {
		sb.WriteString(focusedStyle.Render("Enter") + " to select/submit, " +
			focusedStyle.Render("Tab") + " to switch, " + focusedStyle.Render("Esc") + " to cancel")
	}

	content := boxStyle.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
