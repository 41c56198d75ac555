package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"persona-l/config"
)

type wizardStep int

const (
	stepWelcome wizardStep = iota
	stepBackendSelection
	stepAPIKey
	stepDataDirectory
	stepComplete
)

// wizardBackends are the selectable backends, in display order
var wizardBackends = []string{"hosted", "ollama", "openai", "anthropic"}

type WelcomeModel struct {
	step           wizardStep
	selectedButton int

	selectedBackend int
	dataDirectory   string

	keyInput textinput.Model
	dirInput textinput.Model

	width  int
	height int

	err string
}

var (
	wizardTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("10")).
				Bold(true)

	wizardTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	buttonStyle = lipgloss.NewStyle().
			Width(24).
			Align(lipgloss.Center).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	selectedButtonStyle = lipgloss.NewStyle().
				Width(24).
				Align(lipgloss.Center).
				Padding(0, 2).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("10")).
				Foreground(lipgloss.Color("10")).
				Bold(true)

	wizardErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)

	wizardInputStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("6")).
				Padding(0, 1)
)

func NewWelcomeModel() WelcomeModel {
	keyInput := textinput.New()
	keyInput.Placeholder = "sk-..."
	keyInput.Width = 50
	keyInput.CharLimit = 256
	keyInput.EchoMode = textinput.EchoPassword

	dirInput := textinput.New()
	dirInput.Placeholder = "~/.local/share/persona-l"
	dirInput.Width = 50
	dirInput.CharLimit = 200

	return WelcomeModel{
		step:          stepWelcome,
		dataDirectory: "~/.local/share/persona-l",
		keyInput:      keyInput,
		dirInput:      dirInput,
	}
}

func (m WelcomeModel) Init() tea.Cmd {
	return nil
}

// IsComplete reports whether the wizard finished (vs quit early)
func (m WelcomeModel) IsComplete() bool {
	return m.step == stepComplete
}

func (m WelcomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.step {
		case stepWelcome:
			return m.updateWelcomeScreen(msg)
		case stepBackendSelection:
			return m.updateBackendScreen(msg)
		case stepAPIKey:
			return m.updateAPIKeyScreen(msg)
		case stepDataDirectory:
			return m.updateDataDirectoryScreen(msg)
		}
	}

	return m, nil
}

func (m WelcomeModel) updateWelcomeScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.selectedButton = 0
		return m, nil

	case "down", "j":
		m.selectedButton = 1
		return m, nil

	case "enter":
		if m.selectedButton == 0 {
			// Quick setup: hosted backend, default directories
			if err := m.saveConfigs("hosted", ""); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.step = stepComplete
			return m, tea.Quit
		}
		m.step = stepBackendSelection
		return m, nil
	}

	return m, nil
}

func (m WelcomeModel) updateBackendScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.step = stepWelcome
		m.err = ""
		return m, nil

	case "up", "k":
		if m.selectedBackend > 0 {
			m.selectedBackend--
		}
		return m, nil

	case "down", "j":
		if m.selectedBackend < len(wizardBackends)-1 {
			m.selectedBackend++
		}
		return m, nil

	case "enter":
		backend := wizardBackends[m.selectedBackend]
		if backend == "openai" || backend == "anthropic" {
			m.step = stepAPIKey
			m.keyInput.SetValue("")
			m.keyInput.Focus()
			return m, textinput.Blink
		}
		m.step = stepDataDirectory
		m.dirInput.SetValue(m.dataDirectory)
		m.dirInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m WelcomeModel) updateAPIKeyScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.step = stepBackendSelection
		m.err = ""
		return m, nil

	case "enter":
		if m.keyInput.Value() == "" {
			m.err = "API key cannot be empty"
			return m, nil
		}
		m.err = ""
		m.step = stepDataDirectory
		m.dirInput.SetValue(m.dataDirectory)
		m.dirInput.Focus()
		return m, textinput.Blink
	}

	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m WelcomeModel) updateDataDirectoryScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.step = stepBackendSelection
		m.err = ""
		return m, nil

	case "enter":
		if m.dirInput.Value() == "" {
			m.err = "Data directory cannot be empty"
			return m, nil
		}
		m.dataDirectory = m.dirInput.Value()

		if err := m.saveConfigs(wizardBackends[m.selectedBackend], m.keyInput.Value()); err != nil {
			m.err = err.Error()
			return m, nil
		}

		m.step = stepComplete
		return m, tea.Quit
	}

	m.dirInput, cmd = m.dirInput.Update(msg)
	return m, cmd
}

// saveConfigs writes the system and user config files, plus the API key
// when a direct cloud backend was chosen.
func (m WelcomeModel) saveConfigs(backend, apiKey string) error {
	systemCfg := &config.SystemConfig{
		DataDirectory: m.dataDirectory,
	}
	if err := config.SaveSystemConfig(systemCfg); err != nil {
		return fmt.Errorf("failed to save system config: %w", err)
	}

	dataDir := config.ExpandPath(m.dataDirectory)
	userCfg := config.DefaultUserConfig()
	userCfg.DefaultBackend = backend
	if err := config.SaveUserConfig(userCfg, dataDir); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	if apiKey != "" {
		store := config.NewCredentialStore(config.SecurityPlainText, "")
		if err := store.Load(dataDir); err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		store.Set(backend, apiKey)
		if err := store.Save(dataDir); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
	}

	return nil
}

func (m WelcomeModel) View() string {
	switch m.step {
	case stepWelcome:
		return m.viewWelcomeScreen()
	case stepBackendSelection:
		return m.viewBackendScreen()
	case stepAPIKey:
		return m.viewInputScreen("API Key",
			"Paste your API key. It is stored locally, never uploaded.",
			m.keyInput)
	case stepDataDirectory:
		return m.viewInputScreen("Data Directory",
			"Where conversations and settings are stored.",
			m.dirInput)
	}
	return ""
}

func (m WelcomeModel) viewWelcomeScreen() string {
	title := wizardTitleStyle.Render("Welcome to Persona-L")
	intro := wizardTextStyle.Render("Chat with the imagined author of any web page.")

	quick := buttonStyle.Render("Quick Setup")
	custom := buttonStyle.Render("Custom Setup")
	if m.selectedButton == 0 {
		quick = selectedButtonStyle.Render("Quick Setup")
	} else {
		custom = selectedButtonStyle.Render("Custom Setup")
	}

	hint := wizardTextStyle.Render("Quick Setup uses the hosted backend with default paths.")

	parts := []string{title, "", intro, "", quick, custom, "", hint}
	if m.err != "" {
		parts = append(parts, "", wizardErrorStyle.Render(m.err))
	}
	parts = append(parts, "", DimStyle.Render("↑/↓ select  Enter confirm  q quit"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m WelcomeModel) viewBackendScreen() string {
	title := wizardTitleStyle.Render("Choose a backend")

	labels := map[string]string{
		"hosted":    "Hosted (no setup, server-side quota)",
		"ollama":    "Ollama (local models)",
		"openai":    "OpenAI (bring your own key)",
		"anthropic": "Anthropic (bring your own key)",
	}

	var rows []string
	for i, id := range wizardBackends {
		line := "  " + labels[id]
		if i == m.selectedBackend {
			line = SelectedStyle.Render("▶ " + labels[id])
		}
		rows = append(rows, line)
	}

	parts := []string{title, ""}
	parts = append(parts, rows...)
	if m.err != "" {
		parts = append(parts, "", wizardErrorStyle.Render(m.err))
	}
	parts = append(parts, "", DimStyle.Render("↑/↓ select  Enter confirm  Esc back"))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m WelcomeModel) viewInputScreen(title, hint string, input textinput.Model) string {
	parts := []string{
		wizardTitleStyle.Render(title),
		"",
		wizardTextStyle.Render(hint),
		"",
		wizardInputStyle.Render(input.View()),
	}
	if m.err != "" {
		parts = append(parts, "", wizardErrorStyle.Render(m.err))
	}
	parts = append(parts, "", DimStyle.Render("Enter confirm  Esc back"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
