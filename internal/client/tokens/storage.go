// Package tokens persists the session token between client runs and decodes
// it for display.
package tokens

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
)

// Key is the metadata key holding the token.
const Key = "token"

// Storage is durable storage for a single opaque token. A missing token is
// reported as ok == false with a nil error.
type Storage interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// MetadataStorage keeps the token in the local metadata table.
type MetadataStorage struct {
	repo metadata.Repository
}

func NewMetadataStorage(repo metadata.Repository) *MetadataStorage {
	return &MetadataStorage{repo: repo}
}

func (s *MetadataStorage) Get(ctx context.Context) (string, bool, error) {
	v, err := s.repo.Get(ctx, Key)
	if err != nil {
		return "", false, err
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *MetadataStorage) Set(ctx context.Context, token string) error {
	return s.repo.Set(ctx, Key, []byte(token))
}

func (s *MetadataStorage) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, Key)
}

// MemoryStorage keeps the token in process memory only.
type MemoryStorage struct {
	mu    sync.Mutex
	token string
	ok    bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Get(context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.ok, nil
}

func (s *MemoryStorage) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.ok = token, token != ""
	return nil
}

func (s *MemoryStorage) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.ok = "", false
	return nil
}
