// Package identity owns the per-installation user identifier.
//
// The identifier is a random RFC-4122 UUID created lazily on first use and
// persisted to the key/value store. Once a value exists it is never
// regenerated, so each installation has at most one identifier. A freshly
// generated identifier is registered with the backend exactly once,
// best-effort: registration failure is logged and never surfaced, because
// the identifier is usable locally either way.
package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"persona-l/config"
	"persona-l/storage"
)

const identifierKey = "user_uuid"

// RequestInfo is the server-tracked call quota for an identifier.
// It is a refreshable snapshot, never computed or mutated locally.
type RequestInfo struct {
	UUID      string `json:"uuid"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
}

// Backend is the remote side of the identity service. The hosted API
// client implements it; other backends leave it nil.
type Backend interface {
	RegisterUser(ctx context.Context, id string) error
	RequestInfo(ctx context.Context, id string) (RequestInfo, error)
}

// Service resolves and caches the installation identifier
type Service struct {
	kv      *storage.KV
	backend Backend

	mu     sync.Mutex
	cached string
}

// NewService creates an identity service. backend may be nil, in which
// case registration and quota lookups are skipped.
func NewService(kv *storage.KV, backend Backend) *Service {
	return &Service{kv: kv, backend: backend}
}

// Identifier returns the stored identifier, creating and persisting a new
// one if none exists yet. Repeat calls return the same value without
// touching the network.
func (s *Service) Identifier(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, nil
	}

	var stored string
	found, err := s.kv.Get(identifierKey, &stored)
	if err != nil {
		return "", err
	}
	if found && stored != "" {
		s.cached = stored
		return stored, nil
	}

	id := uuid.New().String()
	if err := s.kv.Set(identifierKey, id); err != nil {
		return "", err
	}
	s.cached = id

	// One best-effort registration per new identifier. No retries; the
	// identifier stays valid locally even when this fails.
	if s.backend != nil {
		if err := s.backend.RegisterUser(ctx, id); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Identity] registration failed: %v", err)
		}
	}

	return id, nil
}

// RequestInfo fetches the current quota snapshot for this installation.
func (s *Service) RequestInfo(ctx context.Context) (RequestInfo, error) {
	id, err := s.Identifier(ctx)
	if err != nil {
		return RequestInfo{}, err
	}
	if s.backend == nil {
		return RequestInfo{UUID: id}, nil
	}
	return s.backend.RequestInfo(ctx, id)
}
