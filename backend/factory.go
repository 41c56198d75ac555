package backend

import (
	"fmt"

	"persona-l/api"
	"persona-l/config"
	"persona-l/model"
)

// New creates the backend selected by cfg.DefaultBackend.
//
// hosted may be nil for non-hosted backends; userID is only used by the
// hosted backend. API keys come from the credential store via
// config.APIKeyFor.
func New(cfg *config.Config, hosted *api.Client, userID string) (model.Backend, error) {
	switch cfg.DefaultBackend {
	case "hosted":
		if hosted == nil {
			return nil, fmt.Errorf("hosted backend requires an API client")
		}
		return NewHostedBackend(hosted, userID), nil
	case "openai":
		return NewOpenAIBackend("", cfg.APIKeyFor("openai"), cfg.OpenAIModel)
	case "anthropic":
		return NewAnthropicBackend("", cfg.APIKeyFor("anthropic"), cfg.AnthropicModel)
	case "ollama":
		return NewOllamaBackend(cfg.OllamaHost, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.DefaultBackend)
	}
}
