package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollamaapi "github.com/ollama/ollama/api"

	"persona-l/api"
	"persona-l/storage"
)

// OllamaBackend talks to a local Ollama server. No API key involved;
// everything runs on the user's machine.
type OllamaBackend struct {
	client *ollamaapi.Client
	model  string
}

// NewOllamaBackend creates an Ollama backend. host and model default to
// the standard local server and llama3.1:latest.
func NewOllamaBackend(host, model string) (*OllamaBackend, error) {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaBackend{
		client: ollamaapi.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}, nil
}

func (b *OllamaBackend) GeneratePersona(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
	const op = "generate-persona"

	content, err := b.chat(ctx, op, []ollamaapi.Message{
		{Role: "system", Content: personaSystemPrompt},
		{Role: "user", Content: buildPersonaPrompt(pageContent, pageURL)},
	})
	if err != nil {
		return storage.Persona{}, err
	}

	return parsePersona(content), nil
}

func (b *OllamaBackend) ChatTurn(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
	const op = "chat-with-persona"

	messages := []ollamaapi.Message{
		{Role: "system", Content: buildChatSystemPrompt(persona, pageContent)},
	}
	for _, msg := range capHistory(history) {
		messages = append(messages, ollamaapi.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, ollamaapi.Message{Role: "user", Content: prompt})

	return b.chat(ctx, op, messages)
}

// chat runs one non-streaming chat request and returns the full reply
func (b *OllamaBackend) chat(ctx context.Context, op string, messages []ollamaapi.Message) (string, error) {
	req := &ollamaapi.ChatRequest{
		Model:    b.model,
		Messages: messages,
		Stream:   func(v bool) *bool { return &v }(false),
	}

	var reply strings.Builder
	err := b.client.Chat(ctx, req, func(resp ollamaapi.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", &api.Error{Kind: api.KindNetwork, Op: op, Message: err.Error()}
	}

	content := strings.TrimSpace(reply.String())
	if content == "" {
		return "", &api.Error{Kind: api.KindBackend, Op: op, Message: "Ollama returned an empty reply."}
	}

	return content, nil
}

func (b *OllamaBackend) Name() string {
	return "ollama"
}

func (b *OllamaBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := b.client.List(ctx)
	return err
}
