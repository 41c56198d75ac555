package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"persona-l/storage"
)

// EndChat terminates the active conversation. With save set the
// transcript is archived; either way the live session state is cleared
// immediately and the model returns to Idle.
func (m *Model) EndChat(save bool) tea.Cmd {
	if !m.PersonaActive() {
		return nil
	}

	// Saving an empty transcript would archive nothing worth reading;
	// only conversations with at least one message are kept.
	var conv *storage.Conversation
	if msgs := m.storageMessages(); save && len(msgs) > 0 {
		conv = &storage.Conversation{
			PersonaNickname:    m.Persona.Nickname,
			PersonaDescription: m.Persona.Description,
			URL:                m.PageURL,
			Messages:           msgs,
		}
	}

	m.Persona = storage.Persona{}
	m.PageURL = ""
	m.PageTitle = ""
	m.PageContent = ""
	m.Messages = nil
	m.Phase = PhaseIdle
	m.Err = ""
	m.persistSnapshot()

	if conv == nil {
		return nil
	}

	store := m.Conversations
	return func() tea.Msg {
		return ConversationSavedMsg{Err: store.Save(conv)}
	}
}

// FetchConversationList loads the archive listing, newest first
func (m *Model) FetchConversationList() tea.Cmd {
	store := m.Conversations
	return func() tea.Msg {
		list, err := store.List()
		return ConversationsListMsg{Conversations: list, Err: err}
	}
}

// LoadConversation loads a full archived conversation for viewing
func (m *Model) LoadConversation(id string) tea.Cmd {
	store := m.Conversations
	return func() tea.Msg {
		conv, err := store.Load(id)
		return ConversationLoadedMsg{Conversation: conv, Err: err}
	}
}

// DeleteSaved removes a conversation from the archive. The live session,
// if any, is untouched.
func (m *Model) DeleteSaved(id string) tea.Cmd {
	store := m.Conversations
	return func() tea.Msg {
		return ConversationDeletedMsg{ID: id, Err: store.Delete(id)}
	}
}

// ExportConversation writes an archived conversation to a JSON file
// under the user's Downloads directory.
func (m *Model) ExportConversation(id, nickname string) tea.Cmd {
	store := m.Conversations
	return func() tea.Msg {
		path := storage.GenerateExportPath(nickname)
		if err := store.ExportToJSON(id, path); err != nil {
			return ConversationExportedMsg{Err: err}
		}
		return ConversationExportedMsg{Path: path}
	}
}
