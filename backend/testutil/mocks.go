// Package testutil provides mock backends and fixtures for tests.
package testutil

import (
	"context"
	"time"

	"persona-l/storage"
)

// MockBackend implements model.Backend with configurable function fields
type MockBackend struct {
	GeneratePersonaFunc func(ctx context.Context, pageContent, pageURL string) (storage.Persona, error)
	ChatTurnFunc        func(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error)
	PingFunc            func(ctx context.Context) error

	// Call records for assertions
	GeneratePersonaCalls int
	ChatTurnCalls        int
	LastPrompt           string
	LastHistory          []storage.Message
}

// NewMockBackend creates a mock with canned success responses
func NewMockBackend() *MockBackend {
	mock := &MockBackend{}
	mock.GeneratePersonaFunc = func(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
		return TestPersona(), nil
	}
	mock.ChatTurnFunc = func(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
		return "A canned reply.", nil
	}
	mock.PingFunc = func(ctx context.Context) error {
		return nil
	}
	return mock
}

func (m *MockBackend) GeneratePersona(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
	m.GeneratePersonaCalls++
	return m.GeneratePersonaFunc(ctx, pageContent, pageURL)
}

func (m *MockBackend) ChatTurn(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
	m.ChatTurnCalls++
	m.LastPrompt = prompt
	m.LastHistory = history
	return m.ChatTurnFunc(ctx, prompt, pageContent, persona, history)
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

// TestPersona returns a sample persona for tests
func TestPersona() storage.Persona {
	return storage.Persona{
		Nickname:    "The Midnight Gardener",
		Description: "Writes about soil and patience with equal reverence.",
	}
}

// TestMessages returns a short sample conversation
func TestMessages() []storage.Message {
	return []storage.Message{
		{Role: "assistant", Content: "Hello there.", Timestamp: time.Now()},
		{Role: "user", Content: "Why do you garden at night?", Timestamp: time.Now()},
		{Role: "assistant", Content: "The slugs and I keep the same hours.", Timestamp: time.Now()},
	}
}

// TestPageContent returns page text comfortably above the persona
// validation minimum.
func TestPageContent() string {
	return "Night gardening is a practice of patience. The beds are quiet, the light is borrowed, and every seedling planted after dusk seems to root a little deeper than its daytime cousins."
}
