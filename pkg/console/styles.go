package console

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#4285F4")
	mintGreen = lipgloss.Color("#A8E6CF")
	salmon    = lipgloss.Color("#FFB3BA")
	mutedGray = lipgloss.Color("#6B7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Width(9)

	urlStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	messageStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmon).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)
