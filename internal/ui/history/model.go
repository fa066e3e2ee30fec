package history

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dacforge/internal/cache"
	"github.com/fragmede/dacforge/internal/render"
	"github.com/fragmede/dacforge/internal/ui/messages"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ba5f34")).Bold(true).Padding(1, 0)
	rowStyle      = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#333333")).Padding(0, 1)
	accountStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ba5f34")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#21ba45")).Bold(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#db2828")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).PaddingLeft(4)
)

// Source lists recorded transactions. *cache.DB implements it.
type Source interface {
	RecentTransactions(limit int) ([]cache.TxRecord, error)
}

// Model is the transaction history view.
type Model struct {
	records     []cache.TxRecord
	selectedIdx int
	expanded    bool
	err         error
	db          Source
	limit       int
	width       int
	height      int
}

// New creates a history view reading up to limit records from db.
func New(db Source, limit int) Model {
	return Model{db: db, limit: limit}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Load fetches the records in the background.
func (m Model) Load() tea.Cmd {
	db, limit := m.db, m.limit
	return func() tea.Msg {
		if db == nil {
			return messages.HistoryLoadedMsg{}
		}
		recs, err := db.RecentTransactions(limit)
		return messages.HistoryLoadedMsg{Records: recs, Err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.HistoryLoadedMsg:
		m.records = msg.Records
		m.err = msg.Err
		if m.selectedIdx >= len(m.records) {
			m.selectedIdx = 0
		}
		if msg.Err != nil {
			text := "Loading history failed: " + msg.Err.Error()
			return m, func() tea.Msg { return messages.StatusMsg{Text: text, IsError: true} }
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx < len(m.records)-1 {
				m.selectedIdx++
			}
		case "k", "up":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "enter":
			m.expanded = !m.expanded
		case "r":
			return m, m.Load()
		}
	}
	return m, nil
}

// View renders the transaction list.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Transactions"))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(failedStyle.Render("  " + m.err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}
	if len(m.records) == 0 {
		sb.WriteString("\n  No transactions yet.\n")
		return sb.String()
	}

	width := m.width - 8
	if width < 20 {
		width = 72
	}

	for i, rec := range m.records {
		var line strings.Builder

		switch rec.Status {
		case cache.TxSucceeded:
			line.WriteString(okStyle.Render("ok    "))
		case cache.TxFailed:
			line.WriteString(failedStyle.Render("failed"))
		default:
			line.WriteString(metaStyle.Render("…     "))
		}
		line.WriteString(" ")
		line.WriteString(accountStyle.Render(rec.Account))
		line.WriteString(metaStyle.Render(fmt.Sprintf(" %s@%s via %s %s",
			rec.Action, rec.Contract, rec.Authenticator, render.TimeAgo(rec.CreatedAt))))

		if i == m.selectedIdx && m.expanded {
			line.WriteString("\n")
			if rec.TxID != "" {
				line.WriteString(detailStyle.Render("tx " + rec.TxID))
				line.WriteString("\n")
			}
			if rec.Error != "" {
				line.WriteString(detailStyle.Render(render.Wrap(rec.Error, width)))
				line.WriteString("\n")
			}
			line.WriteString(detailStyle.Render(render.Wrap(rec.Payload, width)))
		}

		entry := line.String()
		if i == m.selectedIdx {
			entry = selectedStyle.Render(entry)
		} else {
			entry = rowStyle.Render(entry)
		}
		sb.WriteString(entry + "\n")
	}

	return sb.String()
}
