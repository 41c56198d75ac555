package backend

import (
	"context"

	"persona-l/api"
	"persona-l/storage"
)

// HostedBackend delegates persona synthesis and chat to the hosted
// Persona-L function backend. Prompting, persona parsing and quota
// accounting all happen server-side.
type HostedBackend struct {
	client *api.Client
	userID string
}

// NewHostedBackend wraps an API client. userID is the installation
// identifier forwarded with billable calls.
func NewHostedBackend(client *api.Client, userID string) *HostedBackend {
	return &HostedBackend{client: client, userID: userID}
}

func (b *HostedBackend) GeneratePersona(ctx context.Context, pageContent, pageURL string) (storage.Persona, error) {
	return b.client.GeneratePersona(ctx, pageContent, pageURL, b.userID)
}

func (b *HostedBackend) ChatTurn(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message) (string, error) {
	return b.client.ChatWithPersona(ctx, prompt, pageContent, persona, history, b.userID)
}

func (b *HostedBackend) Name() string {
	return "hosted"
}

func (b *HostedBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}
