package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps leaves in a map. It backs tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu     sync.RWMutex
	leaves map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leaves: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(ctx context.Context, path string, dest interface{}) (bool, error) {
	p, err := cleanPath(path)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	subtree := make(map[string]json.RawMessage)
	for key, raw := range s.leaves {
		if inSubtree(key, p) {
			subtree[key] = raw
		}
	}
	s.mu.RUnlock()

	raw, found, err := expand(p, subtree)
	if err != nil || !found {
		return false, err
	}
	return true, decodeInto(raw, dest)
}

func (s *MemoryStore) Set(ctx context.Context, path string, value interface{}) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	leaves, err := flatten(p, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(p, leaves)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	writes, err := planUpdate(path, fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for target, leaves := range writes {
		s.writeLocked(target, leaves)
	}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *MemoryStore) writeLocked(path string, leaves map[string]json.RawMessage) {
	for key := range s.leaves {
		if inSubtree(key, path) {
			delete(s.leaves, key)
		}
	}
	if path != "" {
		for _, parent := range ancestors(path) {
			delete(s.leaves, parent)
		}
	}
	for key, raw := range leaves {
		s.leaves[key] = raw
	}
}
