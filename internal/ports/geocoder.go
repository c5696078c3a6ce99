package ports

import (
	"context"
	"visit-model-service/internal/domain"
)

// Contract for resolving an address string to coordinates.
type Geocoder interface {
	// Return coordinates for one address. An address with no match returns
	// an error; callers degrade to "no coordinates".
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Address -> coordinate memo owned by a single expansion run.
type GeocodeCache interface {
	Get(ctx context.Context, address string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, address string, c domain.Coordinates) error
}

// Creates the geocode cache of one run. release must be called when the run
// ends; it drops whatever the run cached.
type GeocodeCacheFactory interface {
	NewRunCache(ctx context.Context, runID string) (cache GeocodeCache, release func(), err error)
}
