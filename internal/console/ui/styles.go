package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#0077cc")
	successColor = lipgloss.Color("#26a641")
	errorColor   = lipgloss.Color("#e05c5c")
	warningColor = lipgloss.Color("#cccc00")
	mutedColor   = lipgloss.Color("#888888")

	appStyle = lipgloss.NewStyle().Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#aaaaaa"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#333333"))

	upStyle   = lipgloss.NewStyle().Foreground(successColor)
	downStyle = lipgloss.NewStyle().Foreground(errorColor)
	warnStyle = lipgloss.NewStyle().Foreground(warningColor)
	dimStyle  = lipgloss.NewStyle().Foreground(mutedColor)

	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))

	toastStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(errorColor).
			Padding(0, 1)

	infoToastStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(successColor).
			Padding(0, 1)
)
