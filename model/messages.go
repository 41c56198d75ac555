package model

import (
	"persona-l/extract"
	"persona-l/identity"
	"persona-l/storage"
)

// PersonaCreatedMsg reports the outcome of persona creation
type PersonaCreatedMsg struct {
	Page    extract.Result
	Persona storage.Persona
	Err     error
}

// ChatReplyMsg reports the outcome of a chat turn
type ChatReplyMsg struct {
	Reply string
	Err   error
}

// ConversationsListMsg carries the archive listing
type ConversationsListMsg struct {
	Conversations []storage.ConversationMetadata
	Err           error
}

// ConversationSavedMsg reports an archive write
type ConversationSavedMsg struct {
	Err error
}

// ConversationDeletedMsg reports an archive deletion
type ConversationDeletedMsg struct {
	ID  string
	Err error
}

// ConversationLoadedMsg carries a full archived conversation for viewing
type ConversationLoadedMsg struct {
	Conversation *storage.Conversation
	Err          error
}

// ConversationExportedMsg reports an export to a JSON file
type ConversationExportedMsg struct {
	Path string
	Err  error
}

// QuotaMsg carries a refreshed quota snapshot
type QuotaMsg struct {
	Info identity.RequestInfo
	Err  error
}

// BackendStatusMsg reports a backend reachability check
type BackendStatusMsg struct {
	Backend string
	Err     error
}

// MarkdownRenderedMsg carries an async markdown rendering result
type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}
