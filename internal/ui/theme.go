package ui

import "github.com/charmbracelet/lipgloss"

// Colors follow the default DAC palette.
var (
	primary = lipgloss.Color("#ba5f34")
	info    = lipgloss.Color("#4583ba")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Padding(1, 0)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	AccountStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(info)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f2e285")).
			Bold(true)
)
