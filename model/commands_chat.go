package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SendMessage appends the user's prompt and asks the backend for the
// persona's reply. Returns nil when the text is blank, no persona is
// active, or a request is already in flight: sends are serialized, a
// second send while one is pending is dropped rather than queued.
func (m *Model) SendMessage(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" || !m.PersonaActive() || m.Busy() {
		return nil
	}

	// History for the backend is the conversation before this prompt.
	history := m.storageMessages()

	m.Messages = append(m.Messages, Message{
		Role:      "user",
		Content:   text,
		Timestamp: time.Now(),
	})
	m.Phase = PhaseSending
	m.Err = ""
	m.persistSnapshot()

	backend := m.Backend
	persona := m.Persona
	pageContent := m.PageContent

	return func() tea.Msg {
		reply, err := backend.ChatTurn(context.Background(), text, pageContent, persona, history)
		if err != nil {
			return ChatReplyMsg{Err: err}
		}
		return ChatReplyMsg{Reply: reply}
	}
}

// ApplyChatReply commits the outcome of a chat turn. On failure the
// user's message stays in the transcript and the error is shown; the
// user can retry or keep going.
func (m *Model) ApplyChatReply(msg ChatReplyMsg) {
	m.Phase = PhaseActive

	if msg.Err != nil {
		m.Err = ErrorMessage(msg.Err)
		return
	}

	m.Messages = append(m.Messages, Message{
		Role:      "assistant",
		Content:   msg.Reply,
		Timestamp: time.Now(),
	})
	m.persistSnapshot()
}
