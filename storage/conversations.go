package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversationStore persists saved conversations, one JSON file each
type ConversationStore struct {
	conversationsDir string
}

// NewConversationStore creates a new conversation store
func NewConversationStore(dataDir string) (*ConversationStore, error) {
	conversationsDir := filepath.Join(dataDir, "conversations")

	// 0700 - user-only access
	if err := os.MkdirAll(conversationsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}

	return &ConversationStore{
		conversationsDir: conversationsDir,
	}, nil
}

// Save archives a conversation. A missing ID gets a random UUID; saved
// conversations are immutable afterwards except for deletion.
func (s *ConversationStore) Save(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.SavedAt.IsZero() {
		conv.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	path := filepath.Join(s.conversationsDir, conv.ID+".json")
	tempPath := path + ".tmp"

	// 0600 - conversation files contain chat history
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to commit conversation file: %w", err)
	}

	return nil
}

// Load loads a conversation by ID
func (s *ConversationStore) Load(id string) (*Conversation, error) {
	path := filepath.Join(s.conversationsDir, id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return &conv, nil
}

// List returns metadata for all saved conversations, newest first
func (s *ConversationStore) List() ([]ConversationMetadata, error) {
	entries, err := os.ReadDir(s.conversationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations directory: %w", err)
	}

	var conversations []ConversationMetadata

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.conversationsDir, entry.Name()))
		if err != nil {
			continue // Skip corrupted files
		}

		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue // Skip corrupted files
		}

		conversations = append(conversations, ConversationMetadata{
			ID:              conv.ID,
			PersonaNickname: conv.PersonaNickname,
			URL:             conv.URL,
			MessageCount:    len(conv.Messages),
			SavedAt:         conv.SavedAt,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].SavedAt.After(conversations[j].SavedAt)
	})

	return conversations, nil
}

// Delete removes a conversation from the archive. Deleting an unknown ID
// is a no-op.
func (s *ConversationStore) Delete(id string) error {
	err := os.Remove(filepath.Join(s.conversationsDir, id+".json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ExportToJSON writes a conversation to a JSON file at the specified path
func (s *ConversationStore) ExportToJSON(id string, exportPath string) error {
	conv, err := s.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600 - exports contain chat history
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// GenerateExportPath generates a default export path for a conversation
func GenerateExportPath(nickname string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE") // Windows fallback
	}

	sanitized := sanitizeKey(nickname)
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("persona-l-%s-%s.json", sanitized, timestamp)

	return filepath.Join(homeDir, "Downloads", filename)
}
