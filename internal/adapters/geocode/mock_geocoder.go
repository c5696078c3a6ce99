package geocode

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"visit-model-service/internal/domain"
)

// MockGeocoder answers from a fixed table and counts calls per address.
type MockGeocoder struct {
	mu    sync.Mutex
	m     map[string]domain.Coordinates
	calls map[string]int
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(known))
	for addr, c := range known {
		m[strings.Join(strings.Fields(addr), " ")] = c
	}
	return &MockGeocoder{m: m, calls: make(map[string]int)}
}

func (g *MockGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	norm := strings.Join(strings.Fields(address), " ")

	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls[norm]++
	c, ok := g.m[norm]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, ErrNoMatch)
	}
	return c, nil
}

// Calls returns how many times address was looked up.
func (g *MockGeocoder) Calls(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[strings.Join(strings.Fields(address), " ")]
}

// TotalCalls returns the number of lookups across all addresses.
func (g *MockGeocoder) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}
