package model

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"persona-l/api"
	"persona-l/extract"
	"persona-l/storage"
)

// MinPageContent is the minimum trimmed page content length (in runes)
// required before a persona request is sent.
const MinPageContent = 50

// CreatePersona fetches a page, extracts its text and asks the backend
// for an author persona. Returns nil unless the model is Idle.
func (m *Model) CreatePersona(pageURL string) tea.Cmd {
	if m.Phase != PhaseIdle {
		return nil
	}

	m.Phase = PhaseCreating
	m.Err = ""

	backend := m.Backend
	extractor := m.Extractor

	return func() tea.Msg {
		ctx := context.Background()

		page, err := extractor.FromURL(ctx, pageURL)
		if err != nil {
			return PersonaCreatedMsg{Err: &api.Error{
				Kind:    api.KindNetwork,
				Op:      "generate-persona",
				Message: fmt.Sprintf("Could not load the page: %v", err),
			}}
		}

		return generatePersona(ctx, backend, page)
	}
}

// CreatePersonaFromContent synthesizes a persona for content the caller
// already has (pasted text, tests). Same guards and validation as
// CreatePersona, minus the page fetch.
func (m *Model) CreatePersonaFromContent(page extract.Result) tea.Cmd {
	if m.Phase != PhaseIdle {
		return nil
	}

	m.Phase = PhaseCreating
	m.Err = ""

	backend := m.Backend

	return func() tea.Msg {
		return generatePersona(context.Background(), backend, page)
	}
}

// generatePersona validates content length and calls the backend.
// Content below the minimum is rejected without any network call.
func generatePersona(ctx context.Context, backend Backend, page extract.Result) tea.Msg {
	content := strings.TrimSpace(page.Content)
	if utf8.RuneCountInString(content) < MinPageContent {
		return PersonaCreatedMsg{Err: api.NewValidationError(
			"generate-persona",
			"Not enough readable text on this page to infer an author (need at least 50 characters).",
		)}
	}
	page.Content = content

	persona, err := backend.GeneratePersona(ctx, content, page.URL)
	if err != nil {
		return PersonaCreatedMsg{Err: err}
	}

	return PersonaCreatedMsg{Page: page, Persona: persona}
}

// ApplyPersonaCreated commits the outcome of persona creation. On failure
// the model returns to Idle with no partial persona state.
func (m *Model) ApplyPersonaCreated(msg PersonaCreatedMsg) {
	if msg.Err != nil {
		m.Phase = PhaseIdle
		m.Err = ErrorMessage(msg.Err)
		return
	}

	m.Phase = PhaseActive
	m.Persona = msg.Persona
	m.PageURL = msg.Page.URL
	m.PageTitle = msg.Page.Title
	m.PageContent = msg.Page.Content
	m.Err = ""
	m.Messages = []Message{{
		Role:      "assistant",
		Content:   introMessage(msg.Persona),
		Timestamp: time.Now(),
	}}

	m.persistSnapshot()
}

// introMessage synthesizes the persona's opening line
func introMessage(p storage.Persona) string {
	return fmt.Sprintf(
		"Hi, I'm **%s**, the voice behind this page.\n\n%s\n\nAsk me anything about what I wrote.",
		p.Nickname, p.Description,
	)
}

// ErrorMessage extracts a display message from an error, preferring the
// normalized message of the typed API error contract.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := err.(*api.Error); ok {
		return apiErr.Message
	}
	return err.Error()
}
