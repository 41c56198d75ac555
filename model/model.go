package model

import (
	"persona-l/config"
	"persona-l/extract"
	"persona-l/identity"
	"persona-l/storage"
)

// Phase is the conversation lifecycle state
type Phase int

const (
	// PhaseIdle - no persona; the URL prompt is shown
	PhaseIdle Phase = iota
	// PhaseCreating - page fetch + persona generation in flight
	PhaseCreating
	// PhaseActive - persona set, chat available
	PhaseActive
	// PhaseSending - a chat turn is in flight
	PhaseSending
)

// snapshotKey is the storage key mirroring the live session
const snapshotKey = "session_snapshot"

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config        *config.Config
	Backend       Backend
	Identity      *identity.Service
	KV            *storage.KV
	Conversations *storage.ConversationStore
	Search        *storage.ArchiveSearch
	Extractor     *extract.Extractor

	// Conversation state
	Phase       Phase
	Persona     storage.Persona
	PageURL     string
	PageTitle   string
	PageContent string
	Messages    []Message

	// Err is the last failure, recovered for display. Operations never
	// propagate errors past the model.
	Err string

	// Quota snapshot from the hosted backend (refreshed, never computed)
	Quota      identity.RequestInfo
	QuotaKnown bool

	// Application metadata
	Version string
	License string
}

// NewModel creates a Model and restores any session snapshot left by a
// previous run.
func NewModel(cfg *config.Config, backend Backend, idsvc *identity.Service, kv *storage.KV, conversations *storage.ConversationStore, extractor *extract.Extractor, version, license string) *Model {
	m := &Model{
		Config:        cfg,
		Backend:       backend,
		Identity:      idsvc,
		KV:            kv,
		Conversations: conversations,
		Search:        storage.NewArchiveSearch(conversations),
		Extractor:     extractor,
		Phase:         PhaseIdle,
		Version:       version,
		License:       license,
	}

	m.restoreSnapshot()

	return m
}

// restoreSnapshot resumes an in-progress session from disk
func (m *Model) restoreSnapshot() {
	if m.KV == nil {
		return
	}

	var snap storage.Snapshot
	found, err := m.KV.Get(snapshotKey, &snap)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] snapshot restore failed: %v", err)
		}
		return
	}
	if !found || snap.Persona.IsZero() {
		return
	}

	m.Persona = snap.Persona
	m.PageURL = snap.PageURL
	m.PageTitle = snap.PageTitle
	m.PageContent = snap.PageContent
	m.Phase = PhaseActive
	for _, msg := range snap.Messages {
		m.Messages = append(m.Messages, Message{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
}

// persistSnapshot mirrors the live session to disk. The write is
// unconfirmed: failures are logged, never surfaced.
func (m *Model) persistSnapshot() {
	if m.KV == nil {
		return
	}

	snap := storage.Snapshot{
		Persona:     m.Persona,
		PageURL:     m.PageURL,
		PageTitle:   m.PageTitle,
		PageContent: m.PageContent,
		Messages:    m.storageMessages(),
	}

	if err := m.KV.Set(snapshotKey, snap); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Model] snapshot persist failed: %v", err)
	}
}

// storageMessages converts the live message list to storage messages
func (m *Model) storageMessages() []storage.Message {
	var out []storage.Message
	for _, msg := range m.Messages {
		if msg.Role == "user" || msg.Role == "assistant" {
			out = append(out, storage.Message{
				Role:      msg.Role,
				Content:   msg.Content,
				Timestamp: msg.Timestamp,
			})
		}
	}
	return out
}

// PersonaActive reports whether a persona is currently set
func (m *Model) PersonaActive() bool {
	return !m.Persona.IsZero()
}

// Busy reports whether a request is in flight
func (m *Model) Busy() bool {
	return m.Phase == PhaseCreating || m.Phase == PhaseSending
}
