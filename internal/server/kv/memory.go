package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/trackpass/internal/common"
)

// MemoryStore is an in-process Store used in dev mode and in tests.
// Values are kept as marshalled JSON so callers never share memory with
// the store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	raw, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return common.ErrorNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshalling value for %q: %w", key, err)
	}
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling value for %q: %w", key, err)
	}

	s.mu.Lock()
	s.items[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ScanPrefix(ctx context.Context, prefix string) ([]Item, error) {
	s.mu.RLock()
	items := make([]Item, 0)
	for k, v := range s.items {
		if strings.HasPrefix(k, prefix) {
			items = append(items, Item{Key: k, Value: append(json.RawMessage(nil), v...)})
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}
