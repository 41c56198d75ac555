package backend

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"persona-l/api"
	"persona-l/storage"
)

const anthropicMaxTokens = 4096

// AnthropicBackend talks directly to Anthropic's API using the official
// Go SDK.
type AnthropicBackend struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicBackend creates an Anthropic backend. baseURL defaults to
// the public API; the API key is required.
func NewAnthropicBackend(baseURL, apiKey, model string) (*AnthropicBackend, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicBackend{
		client: &client,
		model:  anthropicModel,
	}, nil
}

func (b *AnthropicBackend) GeneratePersona(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
	const op = "generate-persona"

	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: personaSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPersonaPrompt(pageContent, pageURL))),
		},
	})
	if err != nil {
		return storage.Persona{}, &api.Error{Kind: api.KindNetwork, Op: op, Message: err.Error()}
	}

	content := messageText(msg)
	if content == "" {
		return storage.Persona{}, &api.Error{Kind: api.KindBackend, Op: op, Message: "Anthropic returned an empty message."}
	}

	return parsePersona(content), nil
}

func (b *AnthropicBackend) ChatTurn(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
	const op = "chat-with-persona"

	var messages []anthropic.MessageParam
	for _, msg := range capHistory(history) {
		switch msg.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: buildChatSystemPrompt(persona, pageContent)},
		},
		Messages: messages,
	})
	if err != nil {
		return "", &api.Error{Kind: api.KindNetwork, Op: op, Message: err.Error()}
	}

	content := messageText(msg)
	if content == "" {
		return "", &api.Error{Kind: api.KindBackend, Op: op, Message: "Anthropic returned an empty message."}
	}

	return content, nil
}

func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

// Ping makes a minimal request; Anthropic has no health endpoint.
func (b *AnthropicBackend) Ping(ctx context.Context) error {
	_, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}

// messageText concatenates the text blocks of a message
func messageText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}

	var out string
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out += text.Text
		}
	}
	return out
}
