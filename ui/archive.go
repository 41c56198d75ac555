package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"persona-l/storage"
)

// getArchiveList returns the list currently displayed, honoring the
// active filter.
func (a AppView) getArchiveList() []storage.ConversationMetadata {
	if a.archiveFilterMode {
		return a.filteredArchiveList
	}
	return a.archiveList
}

func (a AppView) handleArchiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Delete confirmation takes over all input
	if a.confirmDeleteArchive != nil {
		switch msg.String() {
		case "y", "Y":
			id := a.confirmDeleteArchive.ID
			a.confirmDeleteArchive = nil
			return a, a.dataModel.DeleteSaved(id)
		case "n", "N", "esc":
			a.confirmDeleteArchive = nil
		}
		return a, nil
	}

	if a.archiveFilterMode {
		switch msg.String() {
		case "esc":
			a.archiveFilterMode = false
			a.archiveFilterInput.Blur()
			a.filteredArchiveList = a.archiveList
			return a, nil
		case "enter":
			a.archiveFilterMode = false
			a.archiveFilterInput.Blur()
			return a, nil
		case "up", "down":
			// Fall through to list navigation below
		default:
			var cmd tea.Cmd
			a.archiveFilterInput, cmd = a.archiveFilterInput.Update(msg)
			a.applyArchiveFilter()
			return a, cmd
		}
	}

	list := a.getArchiveList()

	switch msg.String() {
	case "esc", "alt+s":
		a.showArchive = false
		a.archiveFilterMode = false
		a.archiveExportSuccess = ""
		return a, nil

	case "j", "down":
		if a.selectedArchiveIdx < len(list)-1 {
			a.selectedArchiveIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedArchiveIdx > 0 {
			a.selectedArchiveIdx--
		}
		return a, nil

	case "/":
		a.archiveFilterMode = true
		a.archiveFilterInput.Focus()
		a.archiveFilterInput.SetValue("")
		a.filteredArchiveList = a.archiveList
		return a, textinput.Blink

	case "enter":
		if a.selectedArchiveIdx < len(list) {
			return a, a.dataModel.LoadConversation(list[a.selectedArchiveIdx].ID)
		}
		return a, nil

	case "d":
		if a.selectedArchiveIdx < len(list) {
			meta := list[a.selectedArchiveIdx]
			a.confirmDeleteArchive = &meta
		}
		return a, nil

	case "e":
		if a.selectedArchiveIdx < len(list) {
			meta := list[a.selectedArchiveIdx]
			return a, a.dataModel.ExportConversation(meta.ID, meta.PersonaNickname)
		}
		return a, nil
	}

	return a, nil
}

func (a *AppView) applyArchiveFilter() {
	filterValue := a.archiveFilterInput.Value()
	if filterValue == "" {
		a.filteredArchiveList = a.archiveList
	} else {
		targets := make([]string, len(a.archiveList))
		for i, c := range a.archiveList {
			targets[i] = c.PersonaNickname + " " + c.URL
		}

		matches := fuzzy.Find(filterValue, targets)
		a.filteredArchiveList = make([]storage.ConversationMetadata, len(matches))
		for i, match := range matches {
			a.filteredArchiveList[i] = a.archiveList[match.Index]
		}

		// Fall back to full-text search over archived messages when no
		// nickname or URL matches.
		if len(a.filteredArchiveList) == 0 && a.dataModel.Search != nil {
			if hits, err := a.dataModel.Search.SearchAll(filterValue); err == nil {
				seen := make(map[string]bool)
				for _, hit := range hits {
					if seen[hit.ConversationID] {
						continue
					}
					seen[hit.ConversationID] = true
					for _, meta := range a.archiveList {
						if meta.ID == hit.ConversationID {
							a.filteredArchiveList = append(a.filteredArchiveList, meta)
							break
						}
					}
				}
			}
		}
	}

	if a.selectedArchiveIdx >= len(a.filteredArchiveList) {
		a.selectedArchiveIdx = 0
	}
}

func (a AppView) renderArchive() string {
	modalWidth := a.width - 10
	if modalWidth > 110 {
		modalWidth = 110
	}
	modalHeight := a.height - 6

	// Title section (no borders)
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Saved Conversations")

	// Header: filter input or count
	var header string
	if a.archiveFilterMode {
		header = a.archiveFilterInput.View()
	} else if a.archiveExportSuccess != "" {
		header = "Exported to " + a.archiveExportSuccess
	} else {
		displayList := a.getArchiveList()
		if len(displayList) == len(a.archiveList) {
			header = fmt.Sprintf("%d conversations", len(a.archiveList))
		} else {
			header = fmt.Sprintf("%d of %d conversations", len(displayList), len(a.archiveList))
		}
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	displayList := a.getArchiveList()

	var lines []string
	maxLines := modalHeight - 8

	if len(displayList) == 0 {
		emptyMsg := "No saved conversations yet."
		if a.archiveFilterMode {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(displayList)

		if len(displayList) > maxLines {
			if a.selectedArchiveIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedArchiveIdx >= len(displayList)-maxLines/2 {
				startIdx = len(displayList) - maxLines
			} else {
				startIdx = a.selectedArchiveIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		for i := startIdx; i < endIdx && i < len(displayList); i++ {
			lines = append(lines, a.renderArchiveLine(displayList[i], i == a.selectedArchiveIdx, modalWidth))
		}
	}

	listSection := strings.Join(lines, "\n")

	footer := FormatFooter("j/k", "Navigate", "Enter", "View", "d", "Delete", "e", "Export", "/", "Filter", "Esc", "Close")
	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, headerSection, listSection, footerSection}, "\n")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

func (a AppView) renderArchiveLine(meta storage.ConversationMetadata, selected bool, modalWidth int) string {
	indicator := "  "
	if selected {
		indicator = "▶ "
	}

	maxNameWidth := modalWidth - 46
	name := meta.PersonaNickname
	if runewidth.StringWidth(name) > maxNameWidth {
		name = runewidth.Truncate(name, maxNameWidth, "...")
	}

	nameStyled := name
	if selected {
		nameStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(name)
	}

	msgCount := fmt.Sprintf("%d msgs", meta.MessageCount)
	if meta.MessageCount == 1 {
		msgCount = "1 msg"
	}

	site := siteLabel(meta.URL)
	if runewidth.StringWidth(site) > 20 {
		site = runewidth.Truncate(site, 20, "...")
	}

	rightSide := fmt.Sprintf("%s  %20s  %8s", msgCount, site, formatTimeAgo(meta.SavedAt))

	leftVisualWidth := len(indicator) + runewidth.StringWidth(name)
	spacing := modalWidth - 4 - leftVisualWidth - runewidth.StringWidth(rightSide)
	if spacing < 2 {
		spacing = 2
	}

	return indicator + nameStyled + strings.Repeat(" ", spacing) + DimStyle.Render(rightSide)
}

// siteLabel shortens a URL to its host for listing
func siteLabel(rawURL string) string {
	s := strings.TrimPrefix(rawURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}
	return s
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// Archived conversation viewer

func (a AppView) handleArchiveViewerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.viewingConversation = nil
		return a, nil
	}

	var cmd tea.Cmd
	a.archiveViewport, cmd = a.archiveViewport.Update(msg)
	return a, cmd
}

func (a *AppView) updateArchiveViewerContent() {
	conv := a.viewingConversation
	if conv == nil {
		return
	}

	var content strings.Builder
	for _, msg := range conv.Messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.Role == "user" {
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), msg.Content))
			continue
		}

		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n",
			timestamp, PersonaStyle.Render(conv.PersonaNickname), msg.Content))
	}

	a.archiveViewport.SetContent(content.String())
	a.archiveViewport.GotoTop()
}

func (a AppView) renderArchiveViewer() string {
	conv := a.viewingConversation

	title := PersonaStyle.Render(conv.PersonaNickname)
	if conv.URL != "" {
		title += DimStyle.Render("  " + siteLabel(conv.URL))
	}
	title += DimStyle.Render("  saved " + formatTimeAgo(conv.SavedAt))

	footer := StatusStyle.Render(FormatFooter("j/k", "Scroll", "Esc", "Back"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		a.archiveViewport.View(),
		footer,
	)
}
