package kv

import (
	"bytes"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps slots in process memory. Values are copied on the way in
// and out.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
	opts  storeOptions
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte), opts: applyOptions(opts)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := checkQuota(key, value, s.opts.maxSlotBytes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = bytes.Clone(value)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
