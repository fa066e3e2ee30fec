package wizard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dacforge/internal/dac"
	"github.com/fragmede/dacforge/internal/ui/messages"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ba5f34")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Width(16)
	stepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(0, 1)
	activeStep  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1f130d")).Background(lipgloss.Color("#ba5f34")).Bold(true).Padding(0, 1)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	choiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f2e285"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4583ba"))
)

// Model is the four-page DAC creation wizard followed by a review page.
type Model struct {
	pages    []page
	inputs   [][]textinput.Model
	page     int
	focused  int
	owner    string
	payToken string
	review   viewport.Model
	// submitted is set once the answers are handed off for signing and
	// cleared by Resume.
	submitted bool
	width     int
	height    int
}

// New creates the wizard. owner is the account the DAC will be created for
// and payToken the symbol the creation fee is paid in.
func New(owner, payToken string) Model {
	m := Model{
		pages:    pages(),
		owner:    owner,
		payToken: payToken,
		review:   viewport.New(80, 20),
	}
	m.inputs = make([][]textinput.Model, len(m.pages))
	for i, p := range m.pages {
		m.inputs[i] = make([]textinput.Model, len(p.fields))
		for j, f := range p.fields {
			in := textinput.New()
			in.Placeholder = f.placeholder
			in.SetValue(f.value)
			in.CharLimit = 256
			in.Width = 50
			m.inputs[i][j] = in
		}
	}
	m.inputs[0][0].Focus()
	return m
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	fw := w - 24
	if fw > 60 {
		fw = 60
	}
	for i := range m.inputs {
		for j := range m.inputs[i] {
			m.inputs[i][j].Width = fw
		}
	}
	m.review.Width = w
	m.review.Height = max(h-8, 3)
}

// SetOwner updates the account shown on the review page.
func (m *Model) SetOwner(owner string) {
	if m.owner == owner {
		return
	}
	m.owner = owner
	if m.reviewing() {
		m.review.SetContent(m.reviewContent())
	}
}

// Resume allows the review page to submit again.
func (m *Model) Resume() {
	m.submitted = false
}

func (m Model) reviewing() bool {
	return m.page == len(m.pages)
}

// Steps collects the current answers.
func (m Model) Steps() dac.Steps {
	var s dac.Steps
	for i, p := range m.pages {
		for j, f := range p.fields {
			f.apply(&s, strings.TrimSpace(m.inputs[i][j].Value()))
		}
	}
	return s
}

// Payload is what gets submitted for signing.
func (m Model) Payload() dac.Payload {
	return dac.Payload{StepsData: m.Steps(), PayTokenSymbol: m.payToken}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(msg)
	}

	if key.String() == "esc" {
		return m, func() tea.Msg { return messages.GoBackMsg{} }
	}

	if m.reviewing() {
		switch key.String() {
		case "enter", "ctrl+s":
			if m.submitted {
				return m, nil
			}
			m.submitted = true
			payload := m.Payload()
			return m, func() tea.Msg { return messages.SubmitDacMsg{Payload: payload} }
		case "ctrl+p", "pgup", "shift+tab":
			return m, m.setPage(m.page - 1)
		}
		var cmd tea.Cmd
		m.review, cmd = m.review.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "tab", "down":
		return m, m.setFocus(m.focused + 1)
	case "shift+tab", "up":
		return m, m.setFocus(m.focused - 1)
	case "enter":
		if m.focused == len(m.inputs[m.page])-1 {
			return m, m.setPage(m.page + 1)
		}
		return m, m.setFocus(m.focused + 1)
	case "ctrl+n", "pgdown":
		return m, m.setPage(m.page + 1)
	case "ctrl+p", "pgup":
		return m, m.setPage(m.page - 1)
	case "left", "right":
		if f := m.pages[m.page].fields[m.focused]; f.options != nil {
			m.cycle(f.options, key.String() == "right")
			return m, nil
		}
	}
	if m.pages[m.page].fields[m.focused].options != nil {
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	if m.reviewing() {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.page][m.focused], cmd = m.inputs[m.page][m.focused].Update(msg)
	return m, cmd
}

func (m *Model) cycle(options []string, forward bool) {
	in := &m.inputs[m.page][m.focused]
	idx := 0
	for i, o := range options {
		if o == in.Value() {
			idx = i
		}
	}
	if forward {
		idx = (idx + 1) % len(options)
	} else {
		idx = (idx - 1 + len(options)) % len(options)
	}
	in.SetValue(options[idx])
}

func (m *Model) setFocus(i int) tea.Cmd {
	n := len(m.inputs[m.page])
	m.focused = (i + n) % n
	for j := range m.inputs[m.page] {
		m.inputs[m.page][j].Blur()
	}
	return m.inputs[m.page][m.focused].Focus()
}

func (m *Model) setPage(p int) tea.Cmd {
	if p < 0 || p > len(m.pages) {
		return nil
	}
	if !m.reviewing() {
		m.inputs[m.page][m.focused].Blur()
	}
	m.page = p
	if m.reviewing() {
		m.review.SetContent(m.reviewContent())
		m.review.GotoTop()
		return nil
	}
	return m.setFocus(0)
}

func (m Model) reviewContent() string {
	steps := m.Steps()
	memo := dac.BuildMemo(m.owner, steps, "")

	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label) + " " + valueStyle.Render(value) + "\n")
	}
	row("DAC id", memo.ID)
	row("Owner", m.owner)
	row("Authority", memo.Authority)
	row("Treasury", memo.Treasury)
	row("Token", memo.Symbol.Symbol)
	row("Max supply", memo.MaxSupply)
	row("Issuance", memo.Issuance)
	row("Lockup", fmt.Sprintf("%s (%ds)", memo.CustodianConfig.LockupAsset.Quantity, memo.CustodianConfig.LockupReleaseTimeDelay))
	row("Fee", fmt.Sprintf("%s %s to %s", dac.CreationFee, m.payToken, dac.FactoryAccount))
	sb.WriteString("\n")

	data, err := json.MarshalIndent(memo, "", "  ")
	if err != nil {
		sb.WriteString(err.Error())
		return sb.String()
	}
	sb.WriteString(hintStyle.Render(string(data)))
	return sb.String()
}

// View renders the wizard.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Create DAC"))
	sb.WriteString("\n\n")

	var steps []string
	for i, p := range m.pages {
		label := fmt.Sprintf("%d %s", i+1, p.title)
		if i == m.page {
			steps = append(steps, activeStep.Render(label))
		} else {
			steps = append(steps, stepStyle.Render(label))
		}
	}
	if m.reviewing() {
		steps = append(steps, activeStep.Render("Review"))
	} else {
		steps = append(steps, stepStyle.Render("Review"))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, steps...))
	sb.WriteString("\n\n")

	if m.reviewing() {
		sb.WriteString(m.review.View())
		sb.WriteString("\n\n")
		sb.WriteString(hintStyle.Render("Enter to sign and create | Ctrl+P to go back | Esc to cancel"))
		return sb.String()
	}

	for j, f := range m.pages[m.page].fields {
		in := m.inputs[m.page][j]
		value := in.View()
		if f.options != nil {
			value = choiceStyle.Render("< " + in.Value() + " >")
		}
		sb.WriteString(labelStyle.Render(f.label) + " " + value)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render("Tab to switch fields | Ctrl+N/Ctrl+P to change page | Esc to cancel"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
