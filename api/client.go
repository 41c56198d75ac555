// Package api is the HTTP client for the hosted Persona-L function
// backend. All operations are plain request/response JSON; every call is
// billed against a server-side quota which the client does not enforce
// locally.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"persona-l/identity"
	"persona-l/storage"
)

// HistoryLimit caps the conversation history forwarded with a chat turn
// to the most recent messages.
const HistoryLimit = 10

const requestTimeout = 90 * time.Second

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given function endpoint. apiKey is
// optional and sent as a bearer token when present.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

type generatePersonaRequest struct {
	PageContent string `json:"pageContent"`
	PageURL     string `json:"pageUrl,omitempty"`
	UUID        string `json:"uuid,omitempty"`
}

type personaResponse struct {
	Nickname    string `json:"nickname"`
	Description string `json:"description"`
}

// GeneratePersona asks the backend to synthesize an author persona for
// the given page content.
func (c *Client) GeneratePersona(ctx context.Context, pageContent, pageURL, userID string) (storage.Persona, error) {
	const op = "generate-persona"

	var resp personaResponse
	err := c.post(ctx, op, "/generate-persona", generatePersonaRequest{
		PageContent: pageContent,
		PageURL:     pageURL,
		UUID:        userID,
	}, &resp, "Failed to generate a persona.")
	if err != nil {
		return storage.Persona{}, err
	}

	if resp.Nickname == "" && resp.Description == "" {
		return storage.Persona{}, &Error{Kind: KindBackend, Op: op, Message: "The backend returned an empty persona."}
	}

	return storage.Persona{Nickname: resp.Nickname, Description: resp.Description}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Prompt      string           `json:"prompt"`
	PageContent string           `json:"pageContent,omitempty"`
	Persona     *storage.Persona `json:"persona,omitempty"`
	Messages    []chatMessage    `json:"messages,omitempty"`
	UUID        string           `json:"uuid,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// ChatWithPersona sends one chat turn. Only the most recent HistoryLimit
// messages of history are forwarded. userID is the installation
// identifier the server bills the call against.
func (c *Client) ChatWithPersona(ctx context.Context, prompt, pageContent string, persona storage.Persona, history []storage.Message, userID string) (string, error) {
	const op = "chat-with-persona"

	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		messages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	req := chatRequest{
		Prompt:      prompt,
		PageContent: pageContent,
		Messages:    messages,
		UUID:        userID,
	}
	if !persona.IsZero() {
		req.Persona = &persona
	}

	var resp chatResponse
	if err := c.post(ctx, op, "/chat-with-persona", req, &resp, "Failed to generate a chat response."); err != nil {
		return "", err
	}

	if resp.Response == "" {
		return "", &Error{Kind: KindBackend, Op: op, Message: "The backend returned an empty response."}
	}

	return resp.Response, nil
}

type registerRequest struct {
	UUID string `json:"uuid"`
}

// RegisterUser registers a newly generated identifier with the backend.
// Implements identity.Backend.
func (c *Client) RegisterUser(ctx context.Context, id string) error {
	return c.post(ctx, "register-user", "/user", registerRequest{UUID: id}, nil, "Failed to register the user.")
}

// RequestInfo fetches the quota snapshot for an identifier.
// Implements identity.Backend.
func (c *Client) RequestInfo(ctx context.Context, id string) (identity.RequestInfo, error) {
	const op = "request-info"

	endpoint := c.baseURL + "/user?uuid=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return identity.RequestInfo{}, &Error{Kind: KindNetwork, Op: op, Message: err.Error()}
	}
	c.setHeaders(req)

	var info identity.RequestInfo
	if err := c.do(op, req, &info, "Failed to fetch request info."); err != nil {
		return identity.RequestInfo{}, err
	}
	return info, nil
}

// Ping checks that the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, op, path string, payload, out any, fallback string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	return c.do(op, req, out, fallback)
}

func (c *Client) do(op string, req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:    KindBackend,
			Op:      op,
			Message: NormalizeErrorMessage(string(data), fallback),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindBackend, Op: op, Message: fallback}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
