package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"persona-l/config"
	appmodel "persona-l/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Messages) == 0 {
		if a.dataModel.Phase == appmodel.PhaseCreating {
			a.viewport.SetContent(fmt.Sprintf("%s Reading the page and imagining its author...", a.loadingSpinner.View()))
		} else {
			a.viewport.SetContent("Enter a page URL below to meet its author.")
		}
		return
	}

	var content strings.Builder

	for _, msg := range a.dataModel.Messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		var roleStyle = DimStyle
		var roleName string
		switch msg.Role {
		case "user":
			roleStyle = UserStyle
			roleName = "You"
		case "assistant":
			roleStyle = PersonaStyle
			roleName = a.personaLabel()
		default:
			roleName = "System"
		}

		role := roleStyle.Render(roleName)

		renderedContent := msg.Rendered
		if renderedContent == "" {
			renderedContent = msg.Content
		}

		// User messages with vertical bar formatting
		if msg.Role == "user" {
			content.WriteString(formatUserMessage(timestamp, role, renderedContent))
			continue
		}

		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, renderedContent))
	}

	// Waiting indicator while a chat turn is in flight
	if a.dataModel.Phase == appmodel.PhaseSending {
		content.WriteString(fmt.Sprintf("%s %s is thinking...\n", a.loadingSpinner.View(), a.personaLabel()))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a AppView) personaLabel() string {
	if a.dataModel.PersonaActive() {
		return a.dataModel.Persona.Nickname
	}
	return "Persona"
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderPendingMarkdown returns render commands for every message that
// has no cached rendering yet.
func (a AppView) renderPendingMarkdown() []tea.Cmd {
	var cmds []tea.Cmd
	for i, msg := range a.dataModel.Messages {
		if msg.Rendered == "" && msg.Role == "assistant" {
			cmds = append(cmds, a.renderMarkdownAsync(i, msg.Content))
		}
	}
	return cmds
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] rendering markdown for message %d (%d chars)", messageIndex, len(content))
		}

		// Strip markdown link syntax so terminal emulators handle plain
		// URLs themselves.
		content = preprocessLinks(content)

		// Autolink disabled keeps URLs plain text
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		processed := fixInlineCode(string(rendered))

		return appmodel.MarkdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     strings.TrimRight(processed, "\n"),
		}
	}
}

func preprocessLinks(content string) string {
	// [text](url) becomes just url
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Replace blue-background italic inline code with plain red text
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}
