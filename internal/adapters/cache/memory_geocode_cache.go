package cache

import (
	"context"
	"strings"
	"sync"
	"visit-model-service/internal/domain"
)

// In-memory address -> coordinate memo. One instance belongs to one
// expansion run and is discarded with it.
// Address keys are expected to be consistent (e.g., normalized)
// by the caller.
type MemoryGeocodeCache struct {
	mu      sync.Mutex
	entries map[string]domain.Coordinates
}

func NewMemoryGeocodeCache() *MemoryGeocodeCache {
	return &MemoryGeocodeCache{entries: make(map[string]domain.Coordinates)}
}

// Fetch the cached coordinates for one address.
func (m *MemoryGeocodeCache) Get(_ context.Context, address string) (domain.Coordinates, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.entries[strings.TrimSpace(address)]
	return c, ok, nil
}

// Store an address -> coordinate mapping.
func (m *MemoryGeocodeCache) Put(_ context.Context, address string, c domain.Coordinates) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[address] = c
	return nil
}

// Len reports the number of cached addresses.
func (m *MemoryGeocodeCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
