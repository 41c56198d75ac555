package storage

import "time"

// Persona is the backend-synthesized author profile for a page.
// It is replaced wholesale, never merged.
type Persona struct {
	Nickname    string `json:"nickname"`
	Description string `json:"description"`
}

// IsZero reports whether no persona is set
func (p Persona) IsZero() bool {
	return p.Nickname == "" && p.Description == ""
}

// Message represents a chat message
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an archived chat with a persona
type Conversation struct {
	ID                 string    `json:"id"`
	PersonaNickname    string    `json:"persona_nickname"`
	PersonaDescription string    `json:"persona_description,omitempty"`
	URL                string    `json:"url,omitempty"`
	Messages           []Message `json:"messages"`
	SavedAt            time.Time `json:"saved_at"`
}

// ConversationMetadata is a lightweight version of Conversation for listing
type ConversationMetadata struct {
	ID              string    `json:"id"`
	PersonaNickname string    `json:"persona_nickname"`
	URL             string    `json:"url,omitempty"`
	MessageCount    int       `json:"message_count"`
	SavedAt         time.Time `json:"saved_at"`
}

// Snapshot is the live session state mirrored to disk on every mutation
// so a restart resumes the conversation in progress.
type Snapshot struct {
	Persona     Persona   `json:"persona"`
	PageURL     string    `json:"page_url,omitempty"`
	PageTitle   string    `json:"page_title,omitempty"`
	PageContent string    `json:"page_content,omitempty"`
	Messages    []Message `json:"messages"`
}
