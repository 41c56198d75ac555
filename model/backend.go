package model

import (
	"context"

	"persona-l/storage"
)

// Backend abstracts persona synthesis and chat across the hosted
// Persona-L service and the direct OpenAI/Anthropic/Ollama backends.
//
// The interface lives in the model package (not the backend package) to
// avoid import cycles: backend implementations import model-adjacent
// types, and the model uses the interface without importing them.
type Backend interface {
	// GeneratePersona synthesizes an author persona from page content.
	GeneratePersona(ctx context.Context, pageContent, pageURL string) (storage.Persona, error)

	// ChatTurn answers one user prompt in character. history is the
	// conversation so far, excluding the prompt itself; implementations
	// cap it to the most recent messages.
	ChatTurn(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error)

	// Name returns the backend id for display ("hosted", "openai", ...).
	Name() string

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error
}
