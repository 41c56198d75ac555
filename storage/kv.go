package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KV is a small key/value store over JSON files. Each key maps to one file
// under <data_dir>/state. Writes go through a temp file and an atomic
// rename so a crash never leaves a half-written value.
type KV struct {
	dir string
}

// NewKV creates the state directory if needed and returns the store
func NewKV(dataDir string) (*KV, error) {
	dir := filepath.Join(dataDir, "state")

	// 0700 - user-only access
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &KV{dir: dir}, nil
}

// Get reads the value stored under key into v. The boolean reports whether
// the key existed.
func (s *KV) Get(key string, v any) (bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read state %q: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal state %q: %w", key, err)
	}

	return true, nil
}

// Set serializes v and stores it under key
func (s *KV) Set(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state %q: %w", key, err)
	}

	path := s.path(key)
	tempPath := path + ".tmp"

	// 0600 - state may contain conversation text
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state %q: %w", key, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to commit state %q: %w", key, err)
	}

	return nil
}

// Remove deletes the value stored under key. Missing keys are not an error.
func (s *KV) Remove(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *KV) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey replaces characters that are invalid in filenames
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		" ", "-",
	)
	key = replacer.Replace(key)
	key = strings.Trim(key, "-.")
	if key == "" {
		key = "state"
	}
	return key
}
