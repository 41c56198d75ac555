package model

import "time"

// Message represents a chat message in the conversation
type Message struct {
	Role      string
	Content   string
	Rendered  string // Cached markdown rendering
	Timestamp time.Time
}
