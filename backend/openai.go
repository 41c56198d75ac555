package backend

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"persona-l/api"
	"persona-l/storage"
)

// OpenAIBackend talks directly to the OpenAI API using the official Go
// SDK. Persona prompts are built locally and the markdown answer is
// parsed client-side.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend creates an OpenAI backend. baseURL and model default
// to the public API and gpt-4o-mini; the API key is required.
func NewOpenAIBackend(baseURL, apiKey, model string) (*OpenAIBackend, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIBackend{
		client: client,
		model:  model,
	}, nil
}

func (b *OpenAIBackend) GeneratePersona(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
	const op = "generate-persona"

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(personaSystemPrompt),
			openai.UserMessage(buildPersonaPrompt(pageContent, pageURL)),
		},
	})
	if err != nil {
		return storage.Persona{}, &api.Error{Kind: api.KindNetwork, Op: op, Message: err.Error()}
	}

	content := completionText(completion)
	if content == "" {
		return storage.Persona{}, &api.Error{Kind: api.KindBackend, Op: op, Message: "OpenAI returned an empty completion."}
	}

	return parsePersona(content), nil
}

func (b *OpenAIBackend) ChatTurn(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
	const op = "chat-with-persona"

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(buildChatSystemPrompt(persona, pageContent)),
	}
	for _, msg := range capHistory(history) {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.model),
		Messages: messages,
	})
	if err != nil {
		return "", &api.Error{Kind: api.KindNetwork, Op: op, Message: err.Error()}
	}

	content := completionText(completion)
	if content == "" {
		return "", &api.Error{Kind: api.KindBackend, Op: op, Message: "OpenAI returned an empty completion."}
	}

	return content, nil
}

func (b *OpenAIBackend) Name() string {
	return "openai"
}

func (b *OpenAIBackend) Ping(ctx context.Context) error {
	if _, err := b.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}

func completionText(completion *openai.ChatCompletion) string {
	if completion == nil || len(completion.Choices) == 0 {
		return ""
	}
	return completion.Choices[0].Message.Content
}
