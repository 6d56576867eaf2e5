package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors follow the website palette.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#394738")).
			Padding(0, 1)

	NameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7289DA"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0"))

	UsageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0")).
			Background(lipgloss.Color("#1E1F1F")).
			PaddingLeft(2)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

func titleText(s string) string { return TitleStyle.Render(s) }
func mutedText(s string) string { return MutedStyle.Render(s) }
func errorText(s string) string { return ErrorStyle.Render(s) }
