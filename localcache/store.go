package localcache

import (
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Store.Get for keys that were never set or
// have been deleted.
var ErrKeyNotFound = errors.New("localcache: key not found")

// UpdateFunc computes the new value of a key from its current one. found
// is false when the key is not set.
type UpdateFunc func(old []byte, found bool) ([]byte, error)

// Store is a synchronous durable key-value store. Update runs fn and writes
// its result atomically with respect to every other writer of the store,
// including other processes when the backend is shared.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Update(key string, fn UpdateFunc) error
	Delete(key string) error
	Close() error
}

// MemoryStore keeps everything in a map. It backs tests and the "memory"
// cache backend.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore function
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

// Get function
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set function
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Update function
func (s *MemoryStore) Update(key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, found := s.data[key]
	next, err := fn(append([]byte(nil), old...), found)
	if err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), next...)
	return nil
}

// Delete function
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close function
func (s *MemoryStore) Close() error {
	return nil
}
