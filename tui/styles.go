package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	disabledKeyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Strikethrough(true)

	logInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))

	logErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	logSuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Underline(true)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

func statusBadge(status string) string {
	bg := "238"
	switch status {
	case "generating", "syncing":
		bg = "25"
	case "success", "sync_success":
		bg = "28"
	case "error":
		bg = "124"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(status)
}
