package theme

import "github.com/charmbracelet/lipgloss"

// Main UI styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(1, 0)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(1, 0)
)

// Claim state styles
var (
	ClaimedStyle = lipgloss.NewStyle().
			Foreground(ColorClaimed)

	IdleStyle = lipgloss.NewStyle().
			Foreground(ColorIdle)

	ProcessingStyle = lipgloss.NewStyle().
			Foreground(ColorProcessing)

	WarmStyle = lipgloss.NewStyle().
			Foreground(ColorWarm)
)
