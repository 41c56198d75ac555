package storage

import (
	"strings"
	"time"
)

// ConversationMatch represents a search result within the archive
type ConversationMatch struct {
	ConversationID  string
	PersonaNickname string
	MessageIndex    int
	Role            string
	Content         string
	Preview         string
	Timestamp       time.Time
}

// previewLength caps match previews, in runes
const previewLength = 100

// ArchiveSearch scans saved conversations for messages containing a query
type ArchiveSearch struct {
	store *ConversationStore
}

func NewArchiveSearch(store *ConversationStore) *ArchiveSearch {
	return &ArchiveSearch{store: store}
}

// SearchAll returns every archived message containing the query,
// case-insensitive. An empty query matches nothing.
func (a *ArchiveSearch) SearchAll(query string) ([]ConversationMatch, error) {
	if query == "" {
		return []ConversationMatch{}, nil
	}

	list, err := a.store.List()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []ConversationMatch

	for _, meta := range list {
		conv, err := a.store.Load(meta.ID)
		if err != nil {
			continue
		}

		for i, msg := range conv.Messages {
			if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
				continue
			}

			preview := msg.Content
			if runes := []rune(preview); len(runes) > previewLength {
				preview = string(runes[:previewLength]) + "..."
			}

			matches = append(matches, ConversationMatch{
				ConversationID:  conv.ID,
				PersonaNickname: conv.PersonaNickname,
				MessageIndex:    i,
				Role:            msg.Role,
				Content:         msg.Content,
				Preview:         preview,
				Timestamp:       msg.Timestamp,
			})
		}
	}

	return matches, nil
}
