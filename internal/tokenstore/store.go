// Package tokenstore persists OAuth2 credentials per account profile.
package tokenstore

import (
	"context"
	"errors"
	"sync"

	"github.com/jun/drivectl/internal/model"
)

// ErrNotFound is returned when no credential is stored for an account.
var ErrNotFound = errors.New("no stored credential")

// Store loads and saves credentials keyed by account name.
type Store interface {
	Load(ctx context.Context, account string) (*model.StoredCredential, error)
	Save(ctx context.Context, cred *model.StoredCredential) error
	Delete(ctx context.Context, account string) error
}

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]model.StoredCredential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]model.StoredCredential)}
}

func (s *MemoryStore) Load(ctx context.Context, account string) (*model.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[account]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) Save(ctx context.Context, cred *model.StoredCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.Account] = *cred
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, account)
	return nil
}
