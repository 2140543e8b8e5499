package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/values"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map for the life of the process.
// It backs --ephemeral runs and tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// NewConfigStoreFrom creates a store holding a copy of seed.
func NewConfigStoreFrom(seed map[string]any) *ConfigStore {
	s := NewConfigStore()
	maps.Copy(s.values, seed)
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	return values.String(v)
}

func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	return values.Int(v)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	return values.Float(v)
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	return values.Bool(v)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	return values.StringSlice(v)
}

// Set records value under key. It never fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Keys returns every key in the store, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Save and Load have nothing to persist.
func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:" in place of a file.
func (s *ConfigStore) Path() string { return ":memory:" }
