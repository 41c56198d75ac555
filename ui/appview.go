package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	appmodel "persona-l/model"
	"persona-l/storage"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model
	urlInput textinput.Model

	// Window state
	width  int
	height int
	ready  bool

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	showHelp  bool
	showAbout bool

	// End-of-chat modal: save to archive or discard
	showEndChatModal bool

	// Archive browser
	showArchive          bool
	archiveList          []storage.ConversationMetadata
	selectedArchiveIdx   int
	archiveFilterMode    bool
	archiveFilterInput   textinput.Model
	filteredArchiveList  []storage.ConversationMetadata
	confirmDeleteArchive *storage.ConversationMetadata
	archiveExportSuccess string

	// Archived conversation viewer (read-only)
	viewingConversation *storage.Conversation
	archiveViewport     viewport.Model

	// Transient status notice ("Copied to clipboard")
	flash string
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask the persona about the page..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	urlInput := textinput.New()
	urlInput.Prompt = "URL: "
	urlInput.Placeholder = "https://example.com/some-article"
	urlInput.CharLimit = 2048
	urlInput.Focus()

	archiveFilterInput := textinput.New()
	archiveFilterInput.Prompt = "Filter: "
	archiveFilterInput.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	return AppView{
		dataModel:           dataModel,
		viewport:            viewport.New(0, 0),
		archiveViewport:     viewport.New(0, 0),
		textarea:            ta,
		urlInput:            urlInput,
		archiveFilterInput:  archiveFilterInput,
		loadingSpinner:      sp,
		filteredArchiveList: []storage.ConversationMetadata{},
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		a.loadingSpinner.Tick,
	}
	if cmd := a.dataModel.RefreshQuota(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := a.dataModel.CheckBackend(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading Persona-L..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Help (always on top)
	// 2. About
	// 3. Archived conversation viewer
	// 4. Archive browser (with delete confirmation)
	// 5. End-of-chat modal
	// 6. Main view

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a.width, a.height, a.dataModel.Version, a.dataModel.License)
	}

	if a.viewingConversation != nil {
		return a.renderArchiveViewer()
	}

	if a.showArchive {
		if a.confirmDeleteArchive != nil {
			return RenderConfirmationModal(ConfirmationState{
				Active: true,
				Title:  "Delete conversation?",
				Message: fmt.Sprintf("Delete the conversation with %s?\nThis cannot be undone.",
					a.confirmDeleteArchive.PersonaNickname),
			}, a.width, a.height)
		}
		return a.renderArchive()
	}

	if a.showEndChatModal {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "End conversation",
			Message: "Save this conversation to the archive before ending it?\n\ny saves it, n discards it, Esc keeps chatting.",
		}, a.width, a.height)
	}

	return a.renderMain()
}

// renderMain renders the chat screen (or the URL prompt while idle)
func (a AppView) renderMain() string {
	title := a.renderTitleBar()

	var input string
	if a.dataModel.PersonaActive() || a.dataModel.Phase == appmodel.PhaseCreating {
		input = a.textarea.View()
	} else {
		input = a.urlInput.View()
	}

	statusBar := a.renderStatusBar()

	var errLine string
	if a.dataModel.Err != "" {
		errLine = ErrorStyle.Render("✗ " + a.dataModel.Err)
	} else if a.flash != "" {
		errLine = DimStyle.Render(a.flash)
	}

	parts := []string{title, "", a.viewport.View()}
	if errLine != "" {
		parts = append(parts, errLine)
	}
	parts = append(parts, input, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderTitleBar renders "Persona-L - backend - persona | quota"
func (a AppView) renderTitleBar() string {
	appText := PersonaStyle.Render("Persona-L")
	backendText := TitleStyle.Render(fmt.Sprintf(" - %s", a.dataModel.Backend.Name()))

	personaName := "no persona"
	if a.dataModel.PersonaActive() {
		personaName = a.dataModel.Persona.Nickname
	} else if a.dataModel.Phase == appmodel.PhaseCreating {
		personaName = "creating persona " + a.loadingSpinner.View()
	}
	personaText := UserStyle.Render(fmt.Sprintf(" - %s", personaName))

	titleText := ""
	if a.dataModel.PersonaActive() && a.dataModel.PageTitle != "" {
		pageTitle := runewidth.Truncate(a.dataModel.PageTitle, 40, "...")
		titleText = DimStyle.Render(fmt.Sprintf(" (%s)", pageTitle))
	}

	quotaText := ""
	if a.dataModel.QuotaKnown {
		quotaText = DimStyle.Render(fmt.Sprintf(" | %d/%d requests used",
			a.dataModel.Quota.Used, a.dataModel.Quota.Total))
	}

	return appText + backendText + personaText + titleText + quotaText
}

func (a AppView) renderStatusBar() string {
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)

	var statusBar string
	if a.dataModel.PersonaActive() {
		statusBar = fmt.Sprintf("Alt+Q %s  Alt+S %s  Alt+X %s  Alt+Y %s  Alt+Enter %s  Enter %s  Alt+H %s",
			descStyle.Render("Quit"),
			descStyle.Render("Archive"),
			descStyle.Render("End chat"),
			descStyle.Render("Copy"),
			descStyle.Render("New Line"),
			descStyle.Render("Send"),
			descStyle.Render("Help"),
		)
	} else {
		statusBar = fmt.Sprintf("Alt+Q %s  Alt+S %s  Enter %s  Alt+H %s",
			descStyle.Render("Quit"),
			descStyle.Render("Archive"),
			descStyle.Render("Create persona"),
			descStyle.Render("Help"),
		)
	}

	return StatusStyle.Render(statusBar)
}
