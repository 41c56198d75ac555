package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("Persona-L - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		"• Alt+S         Saved conversations",
		"• Alt+X         End chat (save or discard)",
		"• Alt+A         About",
		"• Alt+H         Toggle this help",
		"• Alt+Q         Quit",
	)

	chatNavigation := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Navigation"),
		"• ↑/↓           Scroll",
		"• PgUp/PgDn     Page up / down",
	)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat Actions"),
		"• Enter         Send message / create persona",
		"• Alt+Enter     New line",
		"• Alt+Y         Copy last reply",
	)

	archiveActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Archive"),
		"• j/k           Navigate",
		"• Enter         View conversation",
		"• d             Delete",
		"• e             Export to JSON",
		"• /             Filter",
	)

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		globalActions,
		"",
		chatNavigation,
	)

	column2 := lipgloss.JoinVertical(
		lipgloss.Left,
		chatActions,
		"",
		archiveActions,
	)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render("      Press Alt+H or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(96)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
