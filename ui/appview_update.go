package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	appmodel "persona-l/model"
)

// chromeHeight is the vertical space around the viewport: title, spacer,
// notice line, input area and status bar.
const chromeHeight = 7

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - chromeHeight
		a.archiveViewport.Width = msg.Width
		a.archiveViewport.Height = msg.Height - 4
		a.textarea.SetWidth(msg.Width - 2)
		a.urlInput.Width = msg.Width - 10

		if !a.ready {
			a.ready = true
			// Render any messages restored from a previous run
			cmds = append(cmds, a.renderPendingMarkdown()...)
		}

		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.dataModel.Busy() {
			a.updateViewportContent(false)
		}
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case appmodel.PersonaCreatedMsg:
		a.dataModel.ApplyPersonaCreated(msg)
		if msg.Err == nil {
			a.urlInput.SetValue("")
			a.urlInput.Blur()
			a.textarea.Focus()
			cmds = append(cmds, a.renderPendingMarkdown()...)
			cmds = append(cmds, a.dataModel.RefreshQuota())
		}
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case appmodel.ChatReplyMsg:
		a.dataModel.ApplyChatReply(msg)
		if msg.Err == nil {
			cmds = append(cmds, a.renderPendingMarkdown()...)
			cmds = append(cmds, a.dataModel.RefreshQuota())
		}
		a.updateViewportContent(true)
		return a, tea.Batch(cmds...)

	case appmodel.MarkdownRenderedMsg:
		if msg.MessageIndex >= 0 && msg.MessageIndex < len(a.dataModel.Messages) {
			a.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered
		}
		a.updateViewportContent(true)
		return a, nil

	case appmodel.ConversationsListMsg:
		if msg.Err != nil {
			a.flash = "Could not load the archive: " + msg.Err.Error()
			return a, nil
		}
		a.archiveList = msg.Conversations
		a.filteredArchiveList = msg.Conversations
		if a.selectedArchiveIdx >= len(a.archiveList) {
			a.selectedArchiveIdx = 0
		}
		a.showArchive = true
		return a, nil

	case appmodel.ConversationSavedMsg:
		if msg.Err != nil {
			a.flash = "Could not save the conversation: " + msg.Err.Error()
		} else {
			a.flash = "Conversation saved to the archive."
		}
		return a, nil

	case appmodel.ConversationDeletedMsg:
		if msg.Err != nil {
			a.flash = "Could not delete the conversation: " + msg.Err.Error()
			return a, nil
		}
		// Refresh the listing after a successful delete
		return a, a.dataModel.FetchConversationList()

	case appmodel.ConversationLoadedMsg:
		if msg.Err != nil {
			a.flash = "Could not load the conversation: " + msg.Err.Error()
			return a, nil
		}
		a.viewingConversation = msg.Conversation
		a.updateArchiveViewerContent()
		return a, nil

	case appmodel.ConversationExportedMsg:
		if msg.Err != nil {
			a.archiveExportSuccess = ""
			a.flash = "Export failed: " + msg.Err.Error()
		} else {
			a.archiveExportSuccess = msg.Path
		}
		return a, nil

	case appmodel.QuotaMsg:
		a.dataModel.ApplyQuota(msg)
		return a, nil

	case appmodel.BackendStatusMsg:
		if msg.Err != nil {
			a.flash = fmt.Sprintf("Warning: %s backend is unreachable (%v)", msg.Backend, msg.Err)
		}
		return a, nil
	}

	return a.updateComponents(msg)
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help closes from anywhere
	if a.showHelp {
		switch msg.String() {
		case "esc", "alt+h":
			a.showHelp = false
		}
		return a, nil
	}

	if a.showAbout {
		switch msg.String() {
		case "esc", "alt+a":
			a.showAbout = false
		}
		return a, nil
	}

	if a.viewingConversation != nil {
		return a.handleArchiveViewerKey(msg)
	}

	if a.showArchive {
		return a.handleArchiveKey(msg)
	}

	if a.showEndChatModal {
		return a.handleEndChatKey(msg)
	}

	return a.handleMainKey(msg)
}

func (a AppView) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.flash = ""

	switch msg.String() {
	case "ctrl+c", "alt+q":
		return a, tea.Quit

	case "alt+h":
		a.showHelp = true
		return a, nil

	case "alt+a":
		a.showAbout = true
		return a, nil

	case "alt+s":
		return a, a.dataModel.FetchConversationList()

	case "alt+x":
		if a.dataModel.PersonaActive() {
			a.showEndChatModal = true
		}
		return a, nil

	case "alt+y":
		if reply := a.lastPersonaReply(); reply != "" {
			if err := clipboard.WriteAll(reply); err != nil {
				a.flash = "Copy failed: " + err.Error()
			} else {
				a.flash = "Copied last reply to clipboard."
			}
		}
		return a, nil

	case "enter":
		if a.dataModel.PersonaActive() {
			text := a.textarea.Value()
			cmd := a.dataModel.SendMessage(text)
			if cmd != nil {
				a.textarea.Reset()
				a.updateViewportContent(true)
				return a, tea.Batch(cmd, a.loadingSpinner.Tick)
			}
			return a, nil
		}

		pageURL := strings.TrimSpace(a.urlInput.Value())
		if pageURL == "" {
			return a, nil
		}
		cmd := a.dataModel.CreatePersona(pageURL)
		if cmd != nil {
			a.updateViewportContent(true)
			return a, tea.Batch(cmd, a.loadingSpinner.Tick)
		}
		return a, nil
	}

	return a.updateComponents(msg)
}

func (a AppView) handleEndChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.showEndChatModal = false
		cmd := a.dataModel.EndChat(true)
		a.resetAfterEndChat()
		a.updateViewportContent(true)
		return a, cmd

	case "n", "N":
		a.showEndChatModal = false
		cmd := a.dataModel.EndChat(false)
		a.resetAfterEndChat()
		a.updateViewportContent(true)
		return a, cmd

	case "esc":
		a.showEndChatModal = false
	}
	return a, nil
}

func (a *AppView) resetAfterEndChat() {
	a.textarea.Reset()
	a.textarea.Blur()
	a.urlInput.Focus()
}

// lastPersonaReply returns the most recent assistant message content
func (a AppView) lastPersonaReply() string {
	for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
		if a.dataModel.Messages[i].Role == "assistant" {
			return a.dataModel.Messages[i].Content
		}
	}
	return ""
}

// updateComponents forwards messages to the focused input components
func (a AppView) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if a.dataModel.PersonaActive() {
		a.textarea, cmd = a.textarea.Update(msg)
		cmds = append(cmds, cmd)
	} else if !a.dataModel.Busy() {
		a.urlInput, cmd = a.urlInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}
